package monitoring

import (
	"errors"
	"fmt"
	"strings"
)

// Statistic names a CloudWatch aggregation statistic.
const (
	StatisticAverage = "Average"
	StatisticSum     = "Sum"
	StatisticMaximum = "Maximum"
)

// Signal is a named, typed source of numeric observations: a CloudWatch
// metric identified by namespace, name, dimensions, statistic and period.
type Signal struct {
	Namespace     string
	MetricName    string
	Statistic     string
	PeriodMinutes int
	Dimensions    map[string]string
}

// MatchSpec describes what a metric filter looks for in a log stream.
//
// Exactly one of Terms or Literal must be set. Terms is an "any of these
// substrings" match; Literal is a positional token pattern like
// [timestamp, level="ERROR", message="*health*"].
type MatchSpec struct {
	Terms   []string
	Literal string
}

// Terms builds a MatchSpec matching any of the given literal terms.
func Terms(terms ...string) MatchSpec {
	return MatchSpec{Terms: terms}
}

// Literal builds a MatchSpec from a positional token pattern.
func Literal(pattern string) MatchSpec {
	return MatchSpec{Literal: pattern}
}

// ErrBadPattern marks a malformed metric filter pattern. This is a
// definition-time failure: it must surface before any resource is
// provisioned.
var ErrBadPattern = errors.New("monitoring: malformed metric filter pattern")

// Validate checks the match specification at definition time.
func (m MatchSpec) Validate() error {
	hasTerms := len(m.Terms) > 0
	hasLiteral := strings.TrimSpace(m.Literal) != ""

	switch {
	case hasTerms && hasLiteral:
		return fmt.Errorf("%w: both terms and literal pattern set", ErrBadPattern)
	case !hasTerms && !hasLiteral:
		return fmt.Errorf("%w: empty match specification", ErrBadPattern)
	case hasTerms:
		for _, term := range m.Terms {
			if strings.TrimSpace(term) == "" {
				return fmt.Errorf("%w: empty term", ErrBadPattern)
			}
		}
		return nil
	default:
		return validateLiteral(m.Literal)
	}
}

// validateLiteral checks the positional token pattern syntax:
// a bracketed, comma-separated list of non-empty tokens with balanced quotes.
func validateLiteral(pattern string) error {
	trimmed := strings.TrimSpace(pattern)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return fmt.Errorf("%w: literal pattern must be bracketed: %q", ErrBadPattern, pattern)
	}
	inner := trimmed[1 : len(trimmed)-1]
	if strings.TrimSpace(inner) == "" {
		return fmt.Errorf("%w: literal pattern has no tokens: %q", ErrBadPattern, pattern)
	}
	if strings.Count(inner, `"`)%2 != 0 {
		return fmt.Errorf("%w: unbalanced quotes: %q", ErrBadPattern, pattern)
	}
	for _, token := range splitTokens(inner) {
		if strings.TrimSpace(token) == "" {
			return fmt.Errorf("%w: empty token: %q", ErrBadPattern, pattern)
		}
	}
	return nil
}

// splitTokens splits on commas outside of double quotes.
func splitTokens(inner string) []string {
	var tokens []string
	var current strings.Builder
	inQuote := false
	for _, r := range inner {
		switch {
		case r == '"':
			inQuote = !inQuote
			current.WriteRune(r)
		case r == ',' && !inQuote:
			tokens = append(tokens, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	tokens = append(tokens, current.String())
	return tokens
}

// FilterPlan defines a metric filter: it compiles a log match specification
// into a named numeric signal in the given namespace.
//
// DefaultValue is always 0 and always emitted explicitly: the metrics
// backend does not default filter-derived metrics to 0 on its own, and
// "no data" would break less-than alarms.
type FilterPlan struct {
	MetricName   string
	Namespace    string
	Match        MatchSpec
	MetricValue  float64
	DefaultValue float64
}

// CompileFilter validates a match specification and produces a filter plan.
func CompileFilter(namespace, metricName string, match MatchSpec) (FilterPlan, error) {
	if err := match.Validate(); err != nil {
		return FilterPlan{}, fmt.Errorf("metric filter %s/%s: %w", namespace, metricName, err)
	}
	return FilterPlan{
		MetricName:   metricName,
		Namespace:    namespace,
		Match:        match,
		MetricValue:  1,
		DefaultValue: 0,
	}, nil
}

// Signal returns the derived signal the filter feeds. Filter-derived counts
// are summed over five-minute windows.
func (f FilterPlan) Signal() Signal {
	return Signal{
		Namespace:     f.Namespace,
		MetricName:    f.MetricName,
		Statistic:     StatisticSum,
		PeriodMinutes: 5,
	}
}
