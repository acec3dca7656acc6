// Package dupgraph groups near-duplicate elements that an upstream
// locality-sensitive hashing stage has placed into buckets.
//
// The pipeline has two stages. FindConnectedComponents reads rows of
// (hashtable, band value, element key) from a bucket.Source, builds buckets
// and labels each element with its connected component: the maximal set of
// elements transitively linked by shared buckets. DetectCommunities then
// refines every component that is larger than the trivial threshold into
// communities by turning it into a graph and running a community detection
// algorithm on it.
//
// # Quick Start
//
//	src := rowsource.NewMemory(rows)
//	ccModel, stats, err := dupgraph.FindConnectedComponents(ctx, src)
//	if err != nil {
//	    return err
//	}
//	cmd, report, err := dupgraph.DetectCommunities(ctx, ccModel,
//	    dupgraph.WithAlgorithm(community.LabelPropagation),
//	    dupgraph.WithEdgeMode(graph.Quadratic),
//	    dupgraph.WithWorkers(8),
//	)
//
// # Artifacts
//
// Both models can be persisted to any blobstore.BlobStore:
//
//	store := blobstore.NewLocalStore("./artifacts")
//	err := dupgraph.SaveComponents(ctx, store, "cc.bin", ccModel)
//	ccModel, err = dupgraph.LoadComponents(ctx, store, "cc.bin")
//
// # Failures
//
// Detection runs per component. A failing component never stops its
// siblings; what happens afterwards is set with WithFailurePolicy. Errors
// can be classified with errors.Is against ErrMalformedInput,
// ErrUnsupportedAlgorithm, ErrInvalidConfiguration and ErrSerialization, and
// per-component failures unwrap to *ComponentError.
package dupgraph
