package dupgraph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/dupgraph/blobstore"
	"github.com/hupe1980/dupgraph/bucket"
	"github.com/hupe1980/dupgraph/cc"
	"github.com/hupe1980/dupgraph/community"
	"github.com/hupe1980/dupgraph/executor"
	"github.com/hupe1980/dupgraph/graph"
	"github.com/hupe1980/dupgraph/model"
)

// FindConnectedComponents scans every hashtable of src, assembles buckets and
// labels each element with its connected component.
func FindConnectedComponents(ctx context.Context, src bucket.Source, opts ...Option) (*cc.Model, cc.Stats, error) {
	o := applyOptions(opts)
	start := time.Now()

	last := start
	res, err := bucket.Build(ctx, src, func(st bucket.TableStats) {
		now := time.Now()
		o.metricsCollector.RecordScan(st.Rows, st.Buckets, now.Sub(last))
		o.logger.LogScan(ctx, st)
		last = now
	})
	if err != nil {
		err = translateError(err)
		o.metricsCollector.RecordComponents(0, 0, time.Since(start), err)
		o.logger.ErrorContext(ctx, "bucket scan failed", "error", err)
		return nil, cc.Stats{}, err
	}

	m, stats := cc.Find(res)
	d := time.Since(start)
	o.logger.LogStats(ctx, stats)
	o.logger.LogComponents(ctx, stats.Components, m.NumElements(), d)
	o.metricsCollector.RecordComponents(stats.Components, m.NumElements(), d, nil)
	return m, stats, nil
}

// Report describes a DetectCommunities run.
type Report struct {
	Algorithm string
	Mode      string
	// Components is the number of connected components in the input.
	Components int
	// Singletons counts size-1 components.
	Singletons int
	// Pairs counts components of size 2 up to the trivial threshold. Each
	// became one community without running the detector.
	Pairs int
	// Detected counts components partitioned by the detector.
	Detected int
	// Failed lists components whose detection failed.
	Failed []*ComponentError
	// Communities summarizes the resulting model.
	Communities community.Stats
	Duration    time.Duration
}

type task struct {
	component model.ComponentID
	members   []model.ElementID
}

// DetectCommunities refines every connected component of m into
// communities. Trivial components are emitted directly; the others are
// turned into graphs and partitioned by the configured algorithm through the
// executor.
//
// The algorithm, its configuration and the edge mode are validated before
// any component is processed. If ctx is cancelled the communities produced so
// far are returned together with ctx.Err().
func DetectCommunities(ctx context.Context, m *cc.Model, opts ...Option) (*community.Model, *Report, error) {
	o := applyOptions(opts)
	start := time.Now()

	if err := o.validate(); err != nil {
		return nil, nil, err
	}
	det, err := community.New(o.algorithm, o.algorithmConfig)
	if err != nil {
		return nil, nil, translateError(err)
	}
	if err := m.Validate(); err != nil {
		return nil, nil, fmt.Errorf("component model: %w", err)
	}
	gb, err := graph.NewBuilder(m.IDToBuckets, o.mode)
	if err != nil {
		return nil, nil, translateError(err)
	}

	report := &Report{
		Algorithm: o.algorithm.String(),
		Mode:      o.mode.String(),
	}

	var singletons, pairs []model.Community
	var tasks []task
	for id, members := range m.Components() {
		report.Components++
		switch {
		case len(members) == 1:
			singletons = append(singletons, model.Community(members))
		case len(members) <= o.trivialThreshold:
			pairs = append(pairs, model.Community(members))
		default:
			tasks = append(tasks, task{component: model.ComponentID(id), members: members})
		}
	}
	report.Singletons = len(singletons)
	report.Pairs = len(pairs)

	var results [][]model.Community
	var errs []error
	if len(tasks) > 0 {
		results, errs = executor.Map(ctx, o.executor, tasks, func(ctx context.Context, t task) ([]model.Community, error) {
			begin := time.Now()
			groups, err := detect(ctx, gb, det, t.members)
			o.metricsCollector.RecordDetection(len(t.members), len(groups), time.Since(begin), err)
			return groups, err
		})
	}

	cancelled := ctx.Err() != nil
	skipped := false
	detected := make([]model.Community, 0, len(tasks))
	for i, t := range tasks {
		var err error
		if i < len(errs) {
			err = errs[i]
		}
		switch {
		case err == nil:
			report.Detected++
			detected = append(detected, results[i]...)
			continue
		case cancelled && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
			skipped = true
			continue
		}

		ce := &ComponentError{Component: t.component, Size: len(t.members), cause: translateError(err)}
		report.Failed = append(report.Failed, ce)
		o.logger.LogComponentFailure(ctx, ce)
		switch o.failurePolicy {
		case FailSkip:
			skipped = true
		case FailWhole:
			detected = append(detected, model.Community(t.members))
		}
	}

	communities := make([]model.Community, 0, len(singletons)+len(pairs)+len(detected))
	communities = append(communities, singletons...)
	communities = append(communities, pairs...)
	communities = append(communities, detected...)
	out := &community.Model{Communities: communities, IDToElement: m.IDToElement}

	report.Communities = out.Stats()
	report.Duration = time.Since(start)

	var runErr error
	switch {
	case cancelled:
		runErr = ctx.Err()
	case len(report.Failed) > 0 && o.failurePolicy == FailEscalate:
		failed := make([]error, len(report.Failed))
		for i, ce := range report.Failed {
			failed[i] = ce
		}
		runErr = errors.Join(failed...)
	}
	o.logger.LogDetection(ctx, report, runErr)

	if runErr != nil && !cancelled {
		return nil, report, runErr
	}

	check := out.CheckPartition
	if skipped || cancelled {
		check = out.Validate
	}
	if err := check(); err != nil {
		return nil, report, err
	}
	return out, report, runErr
}

func detect(ctx context.Context, gb *graph.Builder, det *community.Detector, members []model.ElementID) ([]model.Community, error) {
	g, err := gb.Build(members)
	if err != nil {
		return nil, err
	}
	return det.Detect(ctx, g)
}

// SaveComponents writes m to store under name.
func SaveComponents(ctx context.Context, store blobstore.BlobStore, name string, m *cc.Model, opts ...Option) error {
	o := applyOptions(opts)
	return save(ctx, &o, store, name, func(w io.Writer) error {
		return m.WriteBinary(w, o.compression)
	})
}

// LoadComponents reads a component model from store.
func LoadComponents(ctx context.Context, store blobstore.BlobStore, name string, opts ...Option) (*cc.Model, error) {
	o := applyOptions(opts)
	return load(ctx, &o, store, name, cc.ReadBinary)
}

// SaveCommunities writes m to store under name.
func SaveCommunities(ctx context.Context, store blobstore.BlobStore, name string, m *community.Model, opts ...Option) error {
	o := applyOptions(opts)
	return save(ctx, &o, store, name, func(w io.Writer) error {
		return m.WriteBinary(w, o.compression)
	})
}

// LoadCommunities reads a communities model from store.
func LoadCommunities(ctx context.Context, store blobstore.BlobStore, name string, opts ...Option) (*community.Model, error) {
	o := applyOptions(opts)
	return load(ctx, &o, store, name, community.ReadBinary)
}

func save(ctx context.Context, o *options, store blobstore.BlobStore, name string, write func(io.Writer) error) error {
	start := time.Now()
	n, err := blobstore.WriteFunc(ctx, store, name, write)
	err = translateError(err)
	o.metricsCollector.RecordArtifact("save", n, time.Since(start), err)
	o.logger.LogArtifact(ctx, "save", name, err)
	return err
}

func load[T any](ctx context.Context, o *options, store blobstore.BlobStore, name string, read func(io.Reader) (T, error)) (T, error) {
	start := time.Now()
	var zero T
	r, size, err := blobstore.ReadAll(ctx, store, name)
	if err == nil {
		var v T
		v, err = read(r)
		if cerr := r.Close(); err == nil {
			err = cerr
		}
		if err == nil {
			o.metricsCollector.RecordArtifact("load", size, time.Since(start), nil)
			o.logger.LogArtifact(ctx, "load", name, nil)
			return v, nil
		}
	}
	err = translateError(err)
	o.metricsCollector.RecordArtifact("load", 0, time.Since(start), err)
	o.logger.LogArtifact(ctx, "load", name, err)
	return zero, err
}
