// Package community partitions component graphs into communities.
//
// A Detector is created for one Algorithm and its Config. Configuration is
// validated by New, before any graph is touched: unknown algorithms fail with
// ErrUnsupportedAlgorithm and unknown or ill-typed options with
// ErrInvalidConfiguration.
//
// Every algorithm produces either a FlatPartition or a Hierarchy. A Hierarchy
// is reduced to a flat partition by its best cut, which maximizes modularity
// unless the "clusters" option fixes the number of clusters. Modularity is
// gonum's community.Q.
//
// Detect drops synthetic bucket vertices from the result so that only element
// ids remain, and returns element vertices that the algorithm left
// unassigned as singleton communities.
package community
