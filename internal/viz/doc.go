// Package viz renders mechanisms and solver runs in the terminal.
//
//   - [ConvergencePlot]: asciigraph chart of solver error per iteration
//   - [Canvas] and [Camera]: braille line drawing of link skeletons
//   - [JogModel]: Bubble Tea program for moving joints by hand
//
// # Key Bindings
//
//	j/k   - select joint
//	h/l   - move joint down/up by the step
//	+/-   - grow/shrink the step
//	a/d   - orbit the view, w/s tilts it
//	0     - zero every joint
//	t     - cycle themes
//	q     - quit
package viz
