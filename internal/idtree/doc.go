// Package idtree provides an arena-backed tree addressed by integer handles.
//
// A [Tree] owns every [Node] in a dense slice. Callers never hold a node by
// ownership; they hold a [NodeID] and look the node up through the tree that
// issued it. Parent and child links are plain ids, so no reference cycles or
// dangling pointers can be built through the API.
//
//   - [Tree.CreateNode]: append a detached node
//   - [Tree.SetParentChild]: attach a child under a parent
//   - [Tree.Ancestors]: walk from a node up to the root
//   - [Tree.Descendants]: depth-first walk, parents before children
//
// # Example
//
//	tree := idtree.New[string]()
//	root := tree.CreateNode("base")
//	arm := tree.CreateNode("arm")
//	tree.SetParentChild(root, arm)
//	for n := range tree.Descendants(root) {
//	    fmt.Println(n.Data)
//	}
//
// # Structural Errors
//
// Out-of-range ids and rootless trees are programming errors and panic.
// Nothing in this package returns an error value.
package idtree
