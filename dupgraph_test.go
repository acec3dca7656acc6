package dupgraph

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dupgraph/blobstore"
	"github.com/hupe1980/dupgraph/cc"
	"github.com/hupe1980/dupgraph/community"
	"github.com/hupe1980/dupgraph/executor"
	"github.com/hupe1980/dupgraph/graph"
	"github.com/hupe1980/dupgraph/model"
	"github.com/hupe1980/dupgraph/persistence"
	"github.com/hupe1980/dupgraph/rowsource"
	"github.com/hupe1980/dupgraph/testutil"
)

// tables builds rows where tables[h][b] lists the keys of bucket b in
// hashtable h.
func tables(tables ...[][]string) []model.Row {
	var rows []model.Row
	for h, buckets := range tables {
		for b, keys := range buckets {
			for _, k := range keys {
				rows = append(rows, model.Row{Hashtable: model.HashtableID(h), Band: []byte{byte(b)}, Key: k})
			}
		}
	}
	return rows
}

var (
	cliqueA = []string{"a1", "a2", "a3", "a4"}
	cliqueB = []string{"b1", "b2", "b3", "b4"}
)

// mixedRows yields one component of two bridged cliques, one pair and one
// singleton.
func mixedRows() []model.Row {
	return tables(
		[][]string{cliqueA, cliqueB, {"p1", "p2"}, {"s1"}},
		[][]string{cliqueA, cliqueB, {"p1", "p2"}, {"s1"}},
		[][]string{{"a1", "b1"}},
	)
}

// forbidExecutor fails the test if any task is submitted.
type forbidExecutor struct{ t *testing.T }

func (e forbidExecutor) Run(_ context.Context, n int, _ func(context.Context, int) error) []error {
	if n > 0 {
		e.t.Fatalf("executor invoked with %d tasks", n)
	}
	return nil
}

// failingExecutor fails the listed tasks and runs the rest sequentially.
type failingExecutor struct {
	fail map[int]error
}

func (e failingExecutor) Run(ctx context.Context, n int, fn func(context.Context, int) error) []error {
	return executor.Sequential{}.Run(ctx, n, func(ctx context.Context, i int) error {
		if err, ok := e.fail[i]; ok {
			return err
		}
		return fn(ctx, i)
	})
}

func findCC(t *testing.T, rows []model.Row, opts ...Option) *cc.Model {
	t.Helper()
	m, _, err := FindConnectedComponents(context.Background(), rowsource.NewMemory(rows), opts...)
	require.NoError(t, err)
	return m
}

func keySets(m *community.Model) [][]string {
	out := make([][]string, len(m.Communities))
	for i := range m.Communities {
		out[i] = m.Keys(i)
	}
	return out
}

func TestFindConnectedComponents_Chain(t *testing.T) {
	rows := tables(
		[][]string{{"a", "b"}, {"c", "d"}},
		[][]string{{"a", "c"}, {"b", "d"}},
	)
	m, stats, err := FindConnectedComponents(context.Background(), rowsource.NewMemory(rows))
	require.NoError(t, err)

	assert.Equal(t, 1, m.NumComponents())
	assert.Equal(t, []string{"a", "b", "c", "d"}, m.IDToElement)
	assert.Equal(t, 2, stats.Hashtables)
	assert.Equal(t, 4, stats.Buckets)
	assert.Empty(t, stats.Warnings())
}

func TestFindConnectedComponents_MatchesUnionFind(t *testing.T) {
	rng := testutil.NewRNG(42)
	cases := map[string][]model.Row{
		"uniform":   rng.UniformRows(300, 3, 250),
		"clustered": rng.ClusteredRows(30, 6, 4, 0.2),
		"zipf":      rng.ZipfRows(200, 2, 400, 1.2),
	}
	for name, rows := range cases {
		t.Run(name, func(t *testing.T) {
			m := findCC(t, rows)
			got := make([][]string, 0, m.NumComponents())
			for _, ids := range m.Components() {
				keys := m.Keys(ids)
				slices.Sort(keys)
				got = append(got, keys)
			}
			slices.SortFunc(got, func(a, b []string) int { return strings.Compare(a[0], b[0]) })
			assert.Equal(t, testutil.Components(rows), got)
		})
	}
}

func TestFindConnectedComponents_KeyAcrossHashtables(t *testing.T) {
	rows := tables(
		[][]string{{"x", "y"}},
		[][]string{{"z", "x"}},
	)
	m := findCC(t, rows)
	require.Equal(t, []string{"x", "y", "z"}, m.IDToElement)
	assert.Equal(t, []model.BucketID{0, 1}, m.IDToBuckets.Row(0))
	assert.Equal(t, 1, m.NumComponents())
}

type fixedSource []model.Row

func (s fixedSource) Hashtables(context.Context) ([]model.HashtableID, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return []model.HashtableID{0}, nil
}

func (s fixedSource) Scan(_ context.Context, _ model.HashtableID, fn func(model.Row) error) error {
	for _, r := range s {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

func TestFindConnectedComponents_MalformedInput(t *testing.T) {
	interleaved := fixedSource{
		{Band: []byte{1}, Key: "a"},
		{Band: []byte{2}, Key: "b"},
		{Band: []byte{1}, Key: "c"},
	}
	_, _, err := FindConnectedComponents(context.Background(), interleaved)
	require.ErrorIs(t, err, ErrMalformedInput)
	assert.Contains(t, err.Error(), "hashtable 0")

	_, _, err = FindConnectedComponents(context.Background(), fixedSource{})
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestFindConnectedComponents_ObservesScans(t *testing.T) {
	var logs bytes.Buffer
	metrics := &BasicMetricsCollector{}

	_, _, err := FindConnectedComponents(context.Background(), rowsource.NewMemory(mixedRows()),
		WithLogger(NewJSONLogger(&logs, -4)),
		WithMetricsCollector(metrics),
	)
	require.NoError(t, err)

	st := metrics.GetStats()
	assert.Equal(t, int64(3), st.ScanCount)
	assert.Equal(t, int64(24), st.ScannedRows)
	assert.Equal(t, int64(3), st.Components)
	assert.Contains(t, logs.String(), "connected components found")
	assert.Contains(t, logs.String(), "hashtable scanned")
}

func TestDetectCommunities_Mixed(t *testing.T) {
	m := findCC(t, mixedRows())
	require.Equal(t, 3, m.NumComponents())

	cm, report, err := DetectCommunities(context.Background(), m, WithEdgeMode(graph.Quadratic))
	require.NoError(t, err)
	require.NoError(t, cm.CheckPartition())

	assert.Equal(t, 3, report.Components)
	assert.Equal(t, 1, report.Singletons)
	assert.Equal(t, 1, report.Pairs)
	assert.Equal(t, 1, report.Detected)
	assert.Empty(t, report.Failed)
	assert.Equal(t, "multilevel", report.Algorithm)
	assert.Equal(t, "quadratic", report.Mode)

	got := keySets(cm)
	require.Len(t, got, 4)
	// Singletons first, then pairs, then detected communities.
	assert.Equal(t, []string{"s1"}, got[0])
	assert.Equal(t, []string{"p1", "p2"}, got[1])
	assert.ElementsMatch(t, [][]string{cliqueA, cliqueB}, got[2:])
	assert.Equal(t, 4, report.Communities.Communities)
	assert.Equal(t, 4, report.Communities.MaxSize)
}

func TestDetectCommunities_TrivialComponentsSkipDetector(t *testing.T) {
	m := findCC(t, tables([][]string{{"p1", "p2"}, {"s1"}}))

	cm, report, err := DetectCommunities(context.Background(), m, WithExecutor(forbidExecutor{t}))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"s1"}, {"p1", "p2"}}, keySets(cm))
	assert.Zero(t, report.Detected)
}

func TestDetectCommunities_SingletonOnly(t *testing.T) {
	m := findCC(t, tables([][]string{{"only"}}))

	cm, _, err := DetectCommunities(context.Background(), m, WithExecutor(forbidExecutor{t}))
	require.NoError(t, err)
	require.Len(t, cm.Communities, 1)
	assert.Equal(t, model.Community{0}, cm.Communities[0])
}

func TestDetectCommunities_TrivialThreshold(t *testing.T) {
	m := findCC(t, mixedRows())

	cm, report, err := DetectCommunities(context.Background(), m,
		WithTrivialThreshold(8),
		WithExecutor(forbidExecutor{t}),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Pairs)
	assert.Len(t, cm.Communities, 3)

	_, _, err = DetectCommunities(context.Background(), m, WithTrivialThreshold(0))
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestDetectCommunities_ConfigurationFailsBeforeWork(t *testing.T) {
	m := findCC(t, mixedRows())
	ctx := context.Background()

	_, _, err := DetectCommunities(ctx, m,
		WithAlgorithmConfig(community.Config{"bogus": 1}),
		WithExecutor(forbidExecutor{t}),
	)
	require.ErrorIs(t, err, ErrInvalidConfiguration)

	_, _, err = DetectCommunities(ctx, m,
		WithAlgorithm(community.Algorithm(99)),
		WithExecutor(forbidExecutor{t}),
	)
	require.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	_, _, err = DetectCommunities(ctx, m,
		WithEdgeMode(graph.Mode(7)),
		WithExecutor(forbidExecutor{t}),
	)
	require.ErrorIs(t, err, ErrInvalidConfiguration)

	_, _, err = DetectCommunities(ctx, m,
		WithFailurePolicy(FailurePolicy(9)),
		WithExecutor(forbidExecutor{t}),
	)
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestDetectCommunities_FailurePolicies(t *testing.T) {
	boom := errors.New("boom")
	m := findCC(t, mixedRows())
	ctx := context.Background()
	failFirst := WithExecutor(failingExecutor{fail: map[int]error{0: boom}})

	t.Run("escalate", func(t *testing.T) {
		cm, report, err := DetectCommunities(ctx, m, failFirst)
		require.ErrorIs(t, err, boom)
		assert.Nil(t, cm)

		var ce *ComponentError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, uint32(0), ce.Component)
		assert.Equal(t, 8, ce.Size)
		require.Len(t, report.Failed, 1)
	})

	t.Run("skip", func(t *testing.T) {
		cm, report, err := DetectCommunities(ctx, m, failFirst, WithFailurePolicy(FailSkip))
		require.NoError(t, err)
		require.Len(t, report.Failed, 1)
		assert.Equal(t, [][]string{{"s1"}, {"p1", "p2"}}, keySets(cm))
		require.NoError(t, cm.Validate())
		assert.Error(t, cm.CheckPartition())
	})

	t.Run("whole", func(t *testing.T) {
		cm, report, err := DetectCommunities(ctx, m, failFirst, WithFailurePolicy(FailWhole))
		require.NoError(t, err)
		require.Len(t, report.Failed, 1)
		require.NoError(t, cm.CheckPartition())
		require.Len(t, cm.Communities, 3)
		assert.Len(t, cm.Communities[2], 8)
	})
}

func TestDetectCommunities_PanicIsComponentFailure(t *testing.T) {
	m := findCC(t, mixedRows())
	panicky := failingExecutor{fail: map[int]error{0: &executor.PanicError{Value: "bad graph"}}}

	_, report, err := DetectCommunities(context.Background(), m, WithExecutor(panicky))
	var pe *executor.PanicError
	require.ErrorAs(t, err, &pe)
	require.Len(t, report.Failed, 1)
}

func TestDetectCommunities_Cancelled(t *testing.T) {
	m := findCC(t, mixedRows())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cm, report, err := DetectCommunities(ctx, m)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, cm)
	assert.Empty(t, report.Failed)
	assert.Zero(t, report.Detected)
	assert.Equal(t, [][]string{{"s1"}, {"p1", "p2"}}, keySets(cm))
}

func TestDetectCommunities_Properties(t *testing.T) {
	rows := testutil.NewRNG(7).UniformRows(48, 3, 32)
	m := findCC(t, rows)

	algorithms := community.Algorithms()
	for _, alg := range algorithms {
		for _, mode := range []graph.Mode{graph.Linear, graph.Quadratic} {
			t.Run(alg.String()+"/"+mode.String(), func(t *testing.T) {
				cm, _, err := DetectCommunities(context.Background(), m,
					WithAlgorithm(alg),
					WithEdgeMode(mode),
					WithWorkers(4),
				)
				require.NoError(t, err)
				require.NoError(t, cm.CheckPartition())

				for i, c := range cm.Communities {
					comp := m.IDToCC[c[0]]
					for _, el := range c {
						require.Equal(t, comp, m.IDToCC[el], "community %d spans components", i)
					}
				}
			})
		}
	}
}

func TestArtifacts_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	metrics := &BasicMetricsCollector{}

	m := findCC(t, mixedRows())
	cm, _, err := DetectCommunities(ctx, m)
	require.NoError(t, err)

	for _, c := range []persistence.Compression{persistence.CompressionNone, persistence.CompressionLZ4, persistence.CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			opts := []Option{WithCompression(c), WithMetricsCollector(metrics)}
			require.NoError(t, SaveComponents(ctx, store, "cc.bin", m, opts...))
			require.NoError(t, SaveCommunities(ctx, store, "cmd.bin", cm, opts...))

			m2, err := LoadComponents(ctx, store, "cc.bin", opts...)
			require.NoError(t, err)
			assert.Equal(t, m.IDToCC, m2.IDToCC)
			assert.Equal(t, m.IDToElement, m2.IDToElement)
			assert.Equal(t, m.IDToBuckets.Rows(), m2.IDToBuckets.Rows())
			assert.Equal(t, m.IDToBuckets.Cols(), m2.IDToBuckets.Cols())
			assert.Equal(t, m.IDToBuckets.Indices, m2.IDToBuckets.Indices)
			assert.Equal(t, m.IDToBuckets.Indptr, m2.IDToBuckets.Indptr)

			cm2, err := LoadCommunities(ctx, store, "cmd.bin", opts...)
			require.NoError(t, err)
			assert.Equal(t, cm.Communities, cm2.Communities)
			assert.Equal(t, cm.IDToElement, cm2.IDToElement)
		})
	}

	st := metrics.GetStats()
	assert.Equal(t, int64(12), st.ArtifactCount)
	assert.Zero(t, st.ArtifactErrors)
}

func TestArtifacts_LoadErrors(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	_, err := LoadComponents(ctx, store, "missing.bin")
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	m := findCC(t, mixedRows())
	require.NoError(t, SaveComponents(ctx, store, "cc.bin", m))

	_, err = LoadCommunities(ctx, store, "cc.bin")
	require.ErrorIs(t, err, ErrSerialization)

	require.NoError(t, store.Put(ctx, "junk.bin", []byte("definitely not an artifact at all, just text")))
	_, err = LoadComponents(ctx, store, "junk.bin")
	require.ErrorIs(t, err, ErrSerialization)
}

func TestParseFailurePolicy(t *testing.T) {
	for _, p := range []FailurePolicy{FailEscalate, FailSkip, FailWhole} {
		got, err := ParseFailurePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ParseFailurePolicy("retry")
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}
