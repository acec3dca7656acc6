package community

import (
	"context"

	"github.com/hupe1980/dupgraph/graph"
	"github.com/hupe1980/dupgraph/model"
)

// runner executes one configured algorithm on a graph.
type runner func(ctx context.Context, a *graph.Adjacency) (Result, error)

// handlers maps each algorithm to the constructor that validates its options.
var handlers = map[Algorithm]func(*options) runner{
	LabelPropagation:   newLabelPropagation,
	Multilevel:         newMultilevel,
	FastGreedy:         newFastGreedy,
	EdgeBetweenness:    newEdgeBetweenness,
	LeadingEigenvector: newLeadingEigenvector,
	Walktrap:           newWalktrap,
	Infomap:            newInfomap,
}

// Detector partitions graphs with one configured algorithm. It holds no
// mutable state and is safe for concurrent use.
type Detector struct {
	algorithm Algorithm
	run       runner
}

// New validates cfg for algorithm and returns a Detector.
func New(algorithm Algorithm, cfg Config) (*Detector, error) {
	factory, ok := handlers[algorithm]
	if !ok {
		return nil, &UnsupportedAlgorithmError{Name: algorithm.String()}
	}
	o := newOptions(algorithm, cfg)
	run := factory(o)
	if err := o.done(); err != nil {
		return nil, err
	}
	return &Detector{algorithm: algorithm, run: run}, nil
}

// NewByName resolves the algorithm name and calls New.
func NewByName(name string, cfg Config) (*Detector, error) {
	algorithm, err := ParseAlgorithm(name)
	if err != nil {
		return nil, err
	}
	return New(algorithm, cfg)
}

// Algorithm returns the configured algorithm.
func (d *Detector) Algorithm() Algorithm { return d.algorithm }

// Partition runs the algorithm on g and returns the flat partition over all
// vertices, bucket vertices included.
func (d *Detector) Partition(ctx context.Context, g *graph.Graph) (FlatPartition, error) {
	if err := ctx.Err(); err != nil {
		return FlatPartition{}, err
	}
	res, err := d.run(ctx, g.Adjacency())
	if err != nil {
		return FlatPartition{}, err
	}
	return res.flat()
}

// Detect partitions g and returns its communities as element ids. Bucket
// vertices are dropped, groups left empty are discarded, and unassigned
// element vertices become singletons.
func (d *Detector) Detect(ctx context.Context, g *graph.Graph) ([]model.Community, error) {
	p, err := d.Partition(ctx, g)
	if err != nil {
		return nil, err
	}

	groups := make([]model.Community, p.Len())
	var loose []model.Community
	for v := 0; v < g.NumElements(); v++ {
		el := g.Elements[v]
		c := -1
		if v < len(p.Membership) {
			c = p.Membership[v]
		}
		if c < 0 {
			loose = append(loose, model.Community{el})
			continue
		}
		groups[c] = append(groups[c], el)
	}

	out := groups[:0]
	for _, grp := range groups {
		if len(grp) > 0 {
			out = append(out, grp)
		}
	}
	return append(out, loose...), nil
}
