// Package mechanism describes mechanisms in YAML and builds them into
// [kinematics.Tree] values.
//
// A description lists links; each link names its parent (empty for the
// root), its offset from the parent and an optional joint:
//
//	name: pan_tilt
//	links:
//	  - name: base
//	  - name: pan
//	    parent: base
//	    translation: [0, 0, 0.1]
//	    joint: {type: revolute, axis: [0, 0, 1], limits: {min: -3.1, max: 3.1}}
//	  - name: tilt
//	    parent: pan
//	    translation: [0, 0, 0.05]
//	    joint: {type: revolute, axis: [0, 1, 0]}
//
// Built-in descriptions are available from a [Registry].
package mechanism
