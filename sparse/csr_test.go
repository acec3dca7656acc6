package sparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRows(t *testing.T) {
	m := FromRows([][]uint32{{0, 2}, {}, {1, 2}}, 3)

	require.NoError(t, m.Validate())
	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 3, m.Cols())
	assert.Equal(t, 4, m.NNZ())
	assert.Equal(t, []uint64{0, 2, 2, 4}, m.Indptr)
	assert.Equal(t, []byte{1, 1, 1, 1}, m.Data)
	assert.Equal(t, []uint32{0, 2}, m.Row(0))
	assert.Empty(t, m.Row(1))
	assert.Equal(t, 2, m.RowLen(2))
}

func TestTranspose(t *testing.T) {
	m := FromRows([][]uint32{{0, 2}, {1}, {1, 2}, {}}, 3)
	tr := m.Transpose()

	require.NoError(t, tr.Validate())
	assert.Equal(t, 3, tr.Rows())
	assert.Equal(t, 4, tr.Cols())
	assert.Equal(t, []uint32{0}, tr.Row(0))
	assert.Equal(t, []uint32{1, 2}, tr.Row(1))
	assert.Equal(t, []uint32{0, 2}, tr.Row(2))

	back := tr.Transpose()
	assert.Equal(t, m.Indptr, back.Indptr)
	assert.Equal(t, m.Indices, back.Indices)
}

func TestColumnSums(t *testing.T) {
	m := FromRows([][]uint32{{0, 2}, {1}, {1, 2}}, 4)
	assert.Equal(t, []uint32{1, 2, 2, 0}, m.ColumnSums())
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		rows    int
		cols    int
		data    []byte
		indices []uint32
		indptr  []uint64
		wantErr error
	}{
		{"ok", 2, 2, []byte{1, 1}, []uint32{0, 1}, []uint64{0, 1, 2}, nil},
		{"short indptr", 2, 2, []byte{1, 1}, []uint32{0, 1}, []uint64{0, 2}, ErrShape},
		{"data mismatch", 2, 2, []byte{1}, []uint32{0, 1}, []uint64{0, 1, 2}, ErrShape},
		{"decreasing", 2, 2, []byte{1, 1}, []uint32{0, 1}, []uint64{0, 2, 1}, ErrShape},
		{"bad tail", 2, 2, []byte{1, 1}, []uint32{0, 1}, []uint64{0, 1, 1}, ErrShape},
		{"column range", 2, 2, []byte{1, 1}, []uint32{0, 5}, []uint64{0, 1, 2}, ErrIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rows, tt.cols, tt.data, tt.indices, tt.indptr)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
