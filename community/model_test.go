package community

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dupgraph/model"
	"github.com/hupe1980/dupgraph/persistence"
)

func sampleModel() *Model {
	return &Model{
		Communities: []model.Community{{4}, {0, 2}, {1, 3, 5}},
		IDToElement: []string{"a", "b", "c", "d", "e", "f"},
	}
}

func TestModel_CheckPartition(t *testing.T) {
	m := sampleModel()
	require.NoError(t, m.CheckPartition())

	m.Communities = m.Communities[1:]
	require.NoError(t, m.Validate())
	err := m.CheckPartition()
	require.ErrorIs(t, err, ErrInvalidModel)
	assert.Contains(t, err.Error(), "first is 4")
}

func TestModel_ValidateRejects(t *testing.T) {
	tests := map[string][]model.Community{
		"empty":        {{0}, {}},
		"duplicate":    {{0, 1}, {1}},
		"out of range": {{0, 9}},
	}
	for name, comms := range tests {
		t.Run(name, func(t *testing.T) {
			m := &Model{Communities: comms, IDToElement: []string{"a", "b"}}
			require.ErrorIs(t, m.Validate(), ErrInvalidModel)
		})
	}
}

func TestModel_StatsAndSummary(t *testing.T) {
	m := sampleModel()
	st := m.Stats()
	assert.Equal(t, Stats{Communities: 3, Elements: 6, MeanSize: 2, MaxSize: 3, Singletons: 1, Pairs: 1}, st)
	assert.Equal(t, "Overall communities: 3\nAverage community size: 2.0\nMax community size: 3", m.Summary())
	assert.Equal(t, []string{"b", "d", "f"}, m.Keys(2))
}

func TestModel_BinaryRoundTrip(t *testing.T) {
	m := sampleModel()

	var buf bytes.Buffer
	require.NoError(t, m.WriteBinary(&buf, persistence.CompressionZSTD))

	got, err := ReadBinary(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.IDToElement, got.IDToElement)
	require.Len(t, got.Communities, len(m.Communities))
	for i := range m.Communities {
		assert.Equal(t, []model.ElementID(m.Communities[i]), []model.ElementID(got.Communities[i]))
	}
}

func TestModel_BinaryRoundTripEmpty(t *testing.T) {
	m := &Model{}

	var buf bytes.Buffer
	require.NoError(t, m.WriteBinary(&buf, persistence.CompressionNone))

	got, err := ReadBinary(&buf)
	require.NoError(t, err)
	assert.Empty(t, got.Communities)
	assert.Empty(t, got.IDToElement)
}

func TestReadBinary_RejectsOverlap(t *testing.T) {
	sw := persistence.NewSectionWriter(0)
	sw.WriteUint32s(sectionData, []uint32{0, 1, 1})
	sw.WriteUint64s(sectionIndptr, []uint64{0, 2, 3})
	sw.WriteStrings(sectionElements, []string{"a", "b"})
	require.NoError(t, sw.Err())

	var buf bytes.Buffer
	require.NoError(t, persistence.Encode(&buf, persistence.KindCommunities, persistence.CompressionNone, sw.Bytes()))

	m, err := ReadBinary(&buf)
	require.ErrorIs(t, err, persistence.ErrCorrupt)
	require.ErrorIs(t, err, ErrInvalidModel)
	assert.Nil(t, m)
}

func TestReadBinary_WrongKind(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, persistence.Encode(&buf, persistence.KindComponents, persistence.CompressionNone, nil))
	_, err := ReadBinary(&buf)
	require.ErrorIs(t, err, persistence.ErrKindMismatch)
}

func TestReadBinary_RejectsNonMonotoneIndptr(t *testing.T) {
	tests := []struct {
		name   string
		indptr []uint64
	}{
		{"overshoot then back", []uint64{0, 10, 5}},
		{"decreasing", []uint64{0, 3, 2, 5}},
		{"short", []uint64{0, 4}},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sw := persistence.NewSectionWriter(0)
			sw.WriteUint32s(sectionData, []uint32{0, 1, 2, 3, 4})
			sw.WriteUint64s(sectionIndptr, tt.indptr)
			sw.WriteStrings(sectionElements, []string{"a", "b", "c", "d", "e"})
			require.NoError(t, sw.Err())

			var buf bytes.Buffer
			require.NoError(t, persistence.Encode(&buf, persistence.KindCommunities, persistence.CompressionZSTD, sw.Bytes()))

			m, err := ReadBinary(&buf)
			require.ErrorIs(t, err, persistence.ErrCorrupt)
			assert.Nil(t, m)
		})
	}
}
