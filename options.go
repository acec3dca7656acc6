package dupgraph

import (
	"fmt"
	"strings"

	"github.com/hupe1980/dupgraph/community"
	"github.com/hupe1980/dupgraph/executor"
	"github.com/hupe1980/dupgraph/graph"
	"github.com/hupe1980/dupgraph/persistence"
)

// DefaultTrivialThreshold is the largest component size emitted as a single
// community without running a detector.
const DefaultTrivialThreshold = 2

// FailurePolicy decides what happens to a component whose community
// detection fails.
type FailurePolicy uint8

const (
	// FailEscalate fails the run after all components were attempted.
	FailEscalate FailurePolicy = iota
	// FailSkip drops the failed component's elements from the result.
	FailSkip
	// FailWhole emits the failed component as one community.
	FailWhole
)

var failurePolicyNames = [...]string{"escalate", "skip", "whole"}

func (p FailurePolicy) String() string {
	if int(p) < len(failurePolicyNames) {
		return failurePolicyNames[p]
	}
	return fmt.Sprintf("FailurePolicy(%d)", uint8(p))
}

// ParseFailurePolicy maps escalate, skip or whole to a FailurePolicy.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	for i, name := range failurePolicyNames {
		if strings.EqualFold(s, name) {
			return FailurePolicy(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown failure policy %q", ErrInvalidConfiguration, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p FailurePolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *FailurePolicy) UnmarshalText(b []byte) error {
	v, err := ParseFailurePolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	executor         executor.Executor
	failurePolicy    FailurePolicy
	mode             graph.Mode
	algorithm        community.Algorithm
	algorithmConfig  community.Config
	trivialThreshold int
	compression      persistence.Compression
}

// Option configures the pipeline functions.
type Option func(*options)

// WithLogger configures structured logging. Pass nil to disable logging.
//
//	logger := dupgraph.NewJSONLogger(os.Stderr, slog.LevelInfo)
//	model, stats, err := dupgraph.FindConnectedComponents(ctx, src, dupgraph.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetricsCollector configures a metrics collector. Pass nil to disable
// metrics collection.
//
//	metrics := &dupgraph.BasicMetricsCollector{}
//	_, report, _ := dupgraph.DetectCommunities(ctx, model, dupgraph.WithMetricsCollector(metrics))
//	fmt.Println(metrics.GetStats().DetectionAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithExecutor sets the executor running per-component detection tasks.
func WithExecutor(ex executor.Executor) Option {
	return func(o *options) {
		o.executor = ex
	}
}

// WithWorkers runs detection tasks on at most n goroutines. n <= 0 uses
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.executor = executor.Group{Limit: n}
	}
}

// WithFailurePolicy sets how failed components are handled.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(o *options) {
		o.failurePolicy = p
	}
}

// WithEdgeMode selects how bucket membership is turned into graph edges.
func WithEdgeMode(m graph.Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// WithAlgorithm selects the community detection algorithm.
func WithAlgorithm(a community.Algorithm) Option {
	return func(o *options) {
		o.algorithm = a
	}
}

// WithAlgorithmConfig passes algorithm specific options. Keys are validated
// by the algorithm before any component is processed.
func WithAlgorithmConfig(cfg community.Config) Option {
	return func(o *options) {
		o.algorithmConfig = cfg
	}
}

// WithTrivialThreshold sets the largest component size that bypasses
// detection. Components of size 1 are always singletons.
func WithTrivialThreshold(n int) Option {
	return func(o *options) {
		o.trivialThreshold = n
	}
}

// WithCompression sets the payload compression for saved artifacts.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		executor:         executor.Group{},
		failurePolicy:    FailEscalate,
		mode:             graph.Linear,
		algorithm:        community.Multilevel,
		trivialThreshold: DefaultTrivialThreshold,
		compression:      persistence.CompressionZSTD,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.executor == nil {
		o.executor = executor.Sequential{}
	}
	return o
}

func (o *options) validate() error {
	if o.failurePolicy > FailWhole {
		return fmt.Errorf("%w: unknown failure policy %d", ErrInvalidConfiguration, o.failurePolicy)
	}
	if o.mode != graph.Linear && o.mode != graph.Quadratic {
		return fmt.Errorf("%w: unknown edge mode %d", ErrInvalidConfiguration, o.mode)
	}
	if o.trivialThreshold < 1 {
		return fmt.Errorf("%w: trivial threshold must be >= 1, got %d", ErrInvalidConfiguration, o.trivialThreshold)
	}
	return nil
}
