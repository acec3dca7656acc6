// Package minio stores dupgraph artifacts in MinIO or any S3-compatible
// server (Ceph, Garage, SeaweedFS) using the MinIO Go client.
//
//	store, err := minio.New("localhost:9000", "artifacts", "runs/2024-06", minio.Options{
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = dupgraph.SaveComponents(ctx, store, "cc.bin", model)
//
// Create streams through an io.Pipe into PutObject, so large community models
// are uploaded without being buffered in memory.
package minio
