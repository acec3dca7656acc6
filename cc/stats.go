package cc

import (
	"fmt"

	"github.com/hupe1980/dupgraph/model"
	"github.com/hupe1980/dupgraph/sparse"
)

// Stats describes the shape of the bucket data. Operators use it to check
// that the input resembles well-formed LSH output, where every element is
// expected to appear in one bucket per hashtable.
type Stats struct {
	Hashtables            int
	Buckets               int
	Elements              int
	Incidences            int
	FirstBucketSize       int
	MeanElementsPerBucket float64
	MinBucketsPerElement  int
	MaxBucketsPerElement  int
	Components            int
}

// ComputeStats gathers bucket/element statistics.
func ComputeStats(buckets []model.Bucket, index *sparse.CSR, hashtables int) Stats {
	st := Stats{
		Hashtables: hashtables,
		Buckets:    len(buckets),
		Elements:   index.Rows(),
		Incidences: index.NNZ(),
	}
	if len(buckets) > 0 {
		st.FirstBucketSize = len(buckets[0])
		total := 0
		for _, b := range buckets {
			total += len(b)
		}
		st.MeanElementsPerBucket = float64(total) / float64(len(buckets))
	}
	for i := 0; i < index.Rows(); i++ {
		n := index.RowLen(i)
		if i == 0 || n < st.MinBucketsPerElement {
			st.MinBucketsPerElement = n
		}
		if n > st.MaxBucketsPerElement {
			st.MaxBucketsPerElement = n
		}
	}
	return st
}

// Warnings lists the statistics that look suspicious for LSH output.
// None of them invalidates the analysis.
func (s Stats) Warnings() []string {
	var out []string
	if s.Buckets > 0 && s.Elements < s.FirstBucketSize {
		out = append(out, fmt.Sprintf("number of elements %d is below the size of the first bucket %d", s.Elements, s.FirstBucketSize))
	}
	if s.Buckets > 0 && s.MeanElementsPerBucket < 1 {
		out = append(out, fmt.Sprintf("average number of elements per bucket is %.1f", s.MeanElementsPerBucket))
	}
	if s.Elements > 0 && s.MinBucketsPerElement != s.Hashtables {
		out = append(out, fmt.Sprintf("min number of buckets per element is %d, expected %d", s.MinBucketsPerElement, s.Hashtables))
	}
	if s.Elements > 0 && s.MaxBucketsPerElement != s.Hashtables {
		out = append(out, fmt.Sprintf("max number of buckets per element is %d, expected %d", s.MaxBucketsPerElement, s.Hashtables))
	}
	return out
}
