// Package depgraph builds the internal dependency graph of a workspace and
// derives release orders from it.
//
// Edges point from a package to the packages it depends on. Dependency names
// that are not part of the workspace index are dropped when the graph is
// built, so external crates never influence ordering.
//
// Order performs a depth-first post-order traversal using three-color marking
// and fails with CycleError when the graph is not acyclic. Levels groups
// packages into publish waves where every package only depends on packages
// from earlier waves.
package depgraph
