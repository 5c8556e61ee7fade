// Package kinematics models articulated mechanisms as trees of links.
//
// Every [Link] carries a fixed geometric offset from its parent and a
// [Joint] whose position moves the link relative to that offset. Links live
// in an [idtree.Tree] arena; the package builds two views over it:
//
//   - [Chain]: the root-to-end path used for inverse kinematics
//   - [Tree]: the whole mechanism, with cached forward kinematics
//
// # Joint Space
//
// Fixed joints never appear in joint-indexed slices. The joint space of a
// chain or tree is its movable joints, in chain order or creation order
// respectively, and [Chain.JointAngles], [Chain.JointLimits] and
// [Chain.JointNames] are aligned index for index.
//
// # Transform Cache
//
// [Tree.CalcLinkTransforms] stores each link's world transform. The cache
// is only meaningful as a complete sweep, so any joint write anywhere in the
// tree invalidates every cached transform at once.
//
// # Exclusivity
//
// A chain taken from a tree with [Tree.ChainFromEndLinkName] checks the
// tree out until [Chain.Release]. While checked out the tree refuses
// mutation and a second checkout with [ErrChainCheckedOut]. The package is
// not safe for concurrent use.
package kinematics
