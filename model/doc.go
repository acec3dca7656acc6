// Package model defines the identity and record types shared by every stage
// of the pipeline.
//
// # Identity Types
//
//   - ElementID: dense id of an element key (uint32)
//   - BucketID: position of a bucket in the global bucket sequence (uint32)
//   - ComponentID: dense id of a connected component (uint32)
//   - HashtableID: LSH hashtable number
//
// # Data Types
//
//   - Row: one (hashtable, band, key) record from the hashtable store
//   - Bucket: element ids sharing one band value within one hashtable
//   - Community: element ids forming one refinement of a component
package model
