// Package trimcriteria maps the built-in `--criteria` CLI keys to their
// InhabitedTime tick thresholds.
package trimcriteria

import "fmt"

// thresholds maps each supported key to its tick threshold, per the
// inhabited_time<N mapping.
var thresholds = map[string]int64{
	"inhabited_time<15s": 300,
	"inhabited_time<30s": 600,
	"inhabited_time<1m":  1200,
	"inhabited_time<2m":  2400,
	"inhabited_time<3m":  3600,
	"inhabited_time<5m":  6000,
	"inhabited_time<10m": 12000,
}

// Threshold returns the tick threshold for a built-in criteria key.
func Threshold(key string) (int64, error) {
	v, ok := thresholds[key]
	if !ok {
		return 0, fmt.Errorf("trimcriteria: unknown criteria %q", key)
	}
	return v, nil
}

// Keys returns the supported criteria keys, for use in CLI help text.
func Keys() []string {
	keys := make([]string, 0, len(thresholds))
	for k := range thresholds {
		keys = append(keys, k)
	}
	return keys
}
