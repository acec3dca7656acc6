package community

import (
	"fmt"
	"strings"
)

// Algorithm enumerates the supported community detection algorithms.
type Algorithm uint8

const (
	// LabelPropagation assigns each vertex the label carrying the most
	// neighbor weight until labels settle.
	LabelPropagation Algorithm = iota + 1
	// Multilevel is the Louvain method: greedy local moving followed by
	// aggregation, repeated level by level.
	Multilevel
	// FastGreedy merges communities agglomeratively by modularity gain.
	FastGreedy
	// EdgeBetweenness removes the edge with the highest betweenness until no
	// edges remain (Girvan-Newman).
	EdgeBetweenness
	// LeadingEigenvector splits communities by the leading eigenvector of
	// the modularity matrix.
	LeadingEigenvector
	// Walktrap merges communities bottom-up by short random walk distance.
	Walktrap
	// Infomap minimizes the description length of a random walk over the
	// graph (the map equation).
	Infomap
)

var algorithmNames = map[Algorithm]string{
	LabelPropagation:   "label_propagation",
	Multilevel:         "multilevel",
	FastGreedy:         "fastgreedy",
	EdgeBetweenness:    "edge_betweenness",
	LeadingEigenvector: "leading_eigenvector",
	Walktrap:           "walktrap",
	Infomap:            "infomap",
}

func (a Algorithm) String() string {
	if s, ok := algorithmNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Algorithm(%d)", uint8(a))
}

// Algorithms returns all supported algorithms.
func Algorithms() []Algorithm {
	return []Algorithm{LabelPropagation, Multilevel, FastGreedy, EdgeBetweenness, LeadingEigenvector, Walktrap, Infomap}
}

// ParseAlgorithm resolves an algorithm name. Names are case-insensitive and
// may carry a "community_" prefix.
func ParseAlgorithm(name string) (Algorithm, error) {
	key := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "community_")
	for a, s := range algorithmNames {
		if s == key {
			return a, nil
		}
	}
	return 0, &UnsupportedAlgorithmError{Name: name}
}

// MarshalText implements encoding.TextMarshaler.
func (a Algorithm) MarshalText() ([]byte, error) {
	if _, ok := algorithmNames[a]; !ok {
		return nil, &UnsupportedAlgorithmError{Name: a.String()}
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Algorithm) UnmarshalText(text []byte) error {
	v, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
