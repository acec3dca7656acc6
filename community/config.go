package community

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
)

// Config carries algorithm specific options. Values usually come from JSON,
// YAML or flags, so numbers of any Go numeric type are accepted.
type Config map[string]any

// options reads typed values out of a Config and remembers which keys were
// consumed. The first failure sticks.
type options struct {
	alg  Algorithm
	cfg  Config
	used map[string]struct{}
	err  error
}

func newOptions(alg Algorithm, cfg Config) *options {
	return &options{alg: alg, cfg: cfg, used: make(map[string]struct{})}
}

func (o *options) fail(key, reason string) {
	if o.err == nil {
		o.err = &InvalidConfigurationError{Algorithm: o.alg, Key: key, Reason: reason}
	}
}

// int returns the integer option key, or def if absent. Present values must
// be integral and at least min.
func (o *options) int(key string, def, min int) int {
	o.used[key] = struct{}{}
	v, ok := o.cfg[key]
	if !ok || v == nil {
		return def
	}
	f, ok := toFloat(v)
	if !ok {
		o.fail(key, fmt.Sprintf("expected an integer, got %T", v))
		return def
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		o.fail(key, fmt.Sprintf("expected an integer, got %v", v))
		return def
	}
	if int(f) < min {
		o.fail(key, fmt.Sprintf("must be at least %d, got %v", min, v))
		return def
	}
	return int(f)
}

// float returns the positive float option key, or def if absent.
func (o *options) float(key string, def float64) float64 {
	o.used[key] = struct{}{}
	v, ok := o.cfg[key]
	if !ok || v == nil {
		return def
	}
	f, ok := toFloat(v)
	if !ok {
		o.fail(key, fmt.Sprintf("expected a number, got %T", v))
		return def
	}
	if !(f > 0) || math.IsInf(f, 0) {
		o.fail(key, fmt.Sprintf("must be a positive number, got %v", v))
		return def
	}
	return f
}

// done reports the first failure, or the lexically first unknown key.
func (o *options) done() error {
	if o.err != nil {
		return o.err
	}
	var unknown []string
	for k := range o.cfg {
		if _, ok := o.used[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	slices.Sort(unknown)
	return &InvalidConfigurationError{Algorithm: o.alg, Key: unknown[0], Reason: "not supported"}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, !math.IsNaN(n)
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil && !math.IsNaN(f)
	default:
		return 0, false
	}
}
