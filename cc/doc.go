// Package cc computes connected components over the bipartite
// element/bucket incidence graph and holds the resulting component model.
//
// The traversal is bucket-centric: a bucket is visited once, and each of its
// elements pulls in every other bucket it belongs to through the incidence
// index. The cost is linear in the number of bucket/element incidences, no
// matter how large individual buckets are.
//
// Elements that belong to no bucket become singleton components after the
// traversal, so the model always partitions the whole element-id space.
package cc
