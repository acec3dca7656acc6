// Package s3 stores dupgraph artifacts in Amazon S3.
//
//	store, err := s3.New(ctx, "artifacts",
//	    s3.WithPrefix("dedup/2024-06"),
//	    s3.WithRegion("eu-west-1"),
//	)
//	if err != nil {
//	    return err
//	}
//	model, err := dupgraph.LoadComponents(ctx, store, "cc.bin")
//
// Reads use ranged GETs, listing follows ListObjectsV2 pagination, and
// streaming writes go through the upload manager so large community models
// become multipart uploads.
package s3
