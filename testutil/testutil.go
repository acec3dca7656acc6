package testutil

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"strings"
	"sync"

	"github.com/hupe1980/dupgraph/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

func band(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

// UniformRows assigns each of keys elements a uniformly random band out of
// bands in every one of hashtables tables.
func (r *RNG) UniformRows(keys, hashtables, bands int) []model.Row {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]model.Row, 0, keys*hashtables)
	for h := 0; h < hashtables; h++ {
		for k := 0; k < keys; k++ {
			rows = append(rows, model.Row{
				Hashtable: model.HashtableID(h),
				Band:      band(uint64(r.rand.Intn(bands))),
				Key:       fmt.Sprintf("k%06d", k),
			})
		}
	}
	return rows
}

// ClusteredRows generates clusters of size near-duplicates. In each table a
// member shares its cluster's band unless, with probability noise, it falls
// into a band of its own.
func (r *RNG) ClusteredRows(clusters, size, hashtables int, noise float64) []model.Row {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]model.Row, 0, clusters*size*hashtables)
	unique := uint64(clusters)
	for h := 0; h < hashtables; h++ {
		for c := 0; c < clusters; c++ {
			for m := 0; m < size; m++ {
				b := uint64(c)
				if r.rand.Float64() < noise {
					b = unique
					unique++
				}
				rows = append(rows, model.Row{
					Hashtable: model.HashtableID(h),
					Band:      band(b),
					Key:       fmt.Sprintf("c%04d-%03d", c, m),
				})
			}
		}
	}
	return rows
}

// ZipfRows is like UniformRows but picks bands from a Zipf distribution
// with skew s, producing a few very large buckets.
func (r *RNG) ZipfRows(keys, hashtables, bands int, s float64) []model.Row {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]model.Row, 0, keys*hashtables)
	for h := 0; h < hashtables; h++ {
		for k := 0; k < keys; k++ {
			rows = append(rows, model.Row{
				Hashtable: model.HashtableID(h),
				Band:      band(uint64(r.zipfLocked(bands, s))),
				Key:       fmt.Sprintf("k%06d", k),
			})
		}
	}
	return rows
}

// zipfLocked samples k in [0, n) with P(k) proportional to 1/(k+1)^s.
// The caller must hold the lock.
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}
	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}
	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}
	return n - 1
}

// Components computes the connected components of rows with a union-find
// over (hashtable, band) groups. Each component is sorted and the list is
// ordered by its first key.
func Components(rows []model.Row) [][]string {
	parent := map[string]string{}
	var find func(string) string
	find = func(k string) string {
		p, ok := parent[k]
		if !ok {
			parent[k] = k
			return k
		}
		if p == k {
			return k
		}
		root := find(p)
		parent[k] = root
		return root
	}

	first := map[string]string{}
	for _, row := range rows {
		find(row.Key)
		g := fmt.Sprintf("%d/%x", row.Hashtable, row.Band)
		if other, ok := first[g]; ok {
			parent[find(row.Key)] = find(other)
		} else {
			first[g] = row.Key
		}
	}

	groups := map[string][]string{}
	for k := range parent {
		root := find(k)
		groups[root] = append(groups[root], k)
	}
	out := make([][]string, 0, len(groups))
	for _, g := range groups {
		slices.Sort(g)
		out = append(out, g)
	}
	slices.SortFunc(out, func(a, b []string) int {
		return strings.Compare(a[0], b[0])
	})
	return out
}
