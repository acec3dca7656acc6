// Package graph turns a connected component into an explicit undirected
// graph that a community detector can partition.
//
// Two construction modes exist:
//
//   - Linear: bipartite. Vertices are the component's elements plus one
//     vertex per bucket the component touches. Every (element, bucket)
//     incidence becomes an edge weighted by the bucket's global size. The
//     edge count is linear in the number of incidences.
//   - Quadratic: clique expansion. Vertices are the component's elements and
//     every pair of elements sharing a bucket is joined by an unweighted
//     edge. The edge count grows with the square of the bucket size, so this
//     mode is only suitable for small buckets.
//
// Local vertex indices are dense. Element vertices come first, in the order
// the component lists them, followed by bucket vertices in ascending bucket
// id. Vertex names map local indices back to global ids; bucket vertices are
// named by their bucket id offset by the total number of elements.
//
// Graph.Adjacency merges the edge list into an Adjacency, a gonum
// graph.WeightedUndirected that the community algorithms and gonum's graph
// packages run on.
package graph
