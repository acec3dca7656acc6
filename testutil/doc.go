// Package testutil generates synthetic LSH rows for tests and benchmarks.
//
//	rng := testutil.NewRNG(seed)
//	rows := rng.ClusteredRows(20, 8, 4, 0.1) // 20 near-duplicate clusters
//	want := testutil.Components(rows)        // union-find oracle
package testutil
