package suite

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Match returns the registered suites whose names match at least one of
// the doublestar patterns, in registration order. With no patterns every
// suite matches. An invalid pattern is a configuration error.
func Match(patterns []string) ([]*Suite, error) {
	suites := All()
	if len(patterns) == 0 {
		return suites, nil
	}

	// Validate up front so a bad pattern fails even when no suite is
	// registered.
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("suite: invalid filter pattern %q", p)
		}
	}

	var out []*Suite
	for _, s := range suites {
		for _, p := range patterns {
			ok, err := doublestar.Match(p, s.Name())
			if err != nil {
				return nil, fmt.Errorf("suite: filter pattern %q: %w", p, err)
			}
			if ok {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}
