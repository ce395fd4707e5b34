package waf

import (
	"github.com/theory-cloud/webtheory/pkg/monitoring"
	"github.com/theory-cloud/webtheory/pkg/observability"
)

// Rule names. These are also the per-rule metric names reported to the
// metrics backend, so they are stable identifiers.
const (
	RuleCommonRuleSet  = "CommonRuleSet"
	RuleKnownBadInputs = "KnownBadInputs"
	RuleOWASPTopTen    = "OWASPTopTen"
	RuleRateLimit      = "RateLimit"
	RuleGeoBlock       = "GeoBlock"
	RuleAPIAbuse       = "APIAbuseCompound"
)

const (
	// healthCheckPathPrefix is exempt from the general rate limit so load
	// balancer health probes are never throttled.
	healthCheckPathPrefix = "/health"

	// apiPathPrefix scopes the stricter production rate limit to API traffic.
	apiPathPrefix = "/api"

	// apiAbuseRateLimit is the per-IP request limit under apiPathPrefix,
	// lower than any configurable general limit.
	apiAbuseRateLimit = 500
)

// Action says what a rule does on match.
type Action string

const (
	// ActionBlock rejects matching requests.
	ActionBlock Action = "block"
	// ActionGroupDefault passes the request through to the managed group's
	// own internal rule actions instead of overriding them.
	ActionGroupDefault Action = "group-default"
)

// ManagedGroupStatement references a provider-curated rule bundle. The
// bundle's contents are opaque to this system.
type ManagedGroupStatement struct {
	VendorName string
	GroupName  string
}

// RateLimitStatement limits requests per client IP over the provider's
// fixed evaluation window. ExcludePathPrefix, when set, scopes the rule
// down to requests whose path does NOT start with the prefix.
type RateLimitStatement struct {
	LimitPerIP        int
	ExcludePathPrefix string
}

// GeoMatchStatement matches requests originating from the listed countries.
type GeoMatchStatement struct {
	CountryCodes []string
}

// CompoundStatement matches when BOTH conditions hold: the request path
// starts with PathPrefix and the per-IP rate exceeds LimitPerIP.
type CompoundStatement struct {
	PathPrefix string
	LimitPerIP int
}

// Statement is the match condition of one rule. Exactly one field is set.
type Statement struct {
	ManagedGroup *ManagedGroupStatement
	RateLimit    *RateLimitStatement
	GeoMatch     *GeoMatchStatement
	Compound     *CompoundStatement
}

// RulePlan is one fully resolved request-inspection rule. Priority is
// assigned by append order and unique within a rule set.
type RulePlan struct {
	Name      string
	Priority  int
	Action    Action
	Statement Statement
}

// ComposeInput selects which rules the set carries and how they are tuned.
type ComposeInput struct {
	Environment         monitoring.Environment
	RateLimitPerIP      int
	GeoBlockEnabled     bool
	BlockedCountries    []string
	ManagedRulesEnabled bool
}

// Compose assembles the ordered rule set for one environment.
//
// Rules are appended in a fixed order — managed groups, general rate limit,
// geo block, API abuse — with priorities assigned by an incrementing
// counter starting at 1. The order encodes cheap/broad filters first,
// narrow filters last; reordering changes security posture.
//
// Geo blocking enabled with an empty country list omits the rule instead of
// failing. That is deliberate fail-open behavior, surfaced at Warn so an
// operator who expected validation sees it.
func Compose(in ComposeInput, logger observability.StructuredLogger) []RulePlan {
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}
	c := &composer{}

	if in.ManagedRulesEnabled {
		c.append(RuleCommonRuleSet, ActionGroupDefault, Statement{
			ManagedGroup: &ManagedGroupStatement{VendorName: "AWS", GroupName: "AWSManagedRulesCommonRuleSet"},
		})
		c.append(RuleKnownBadInputs, ActionGroupDefault, Statement{
			ManagedGroup: &ManagedGroupStatement{VendorName: "AWS", GroupName: "AWSManagedRulesKnownBadInputsRuleSet"},
		})
		if in.Environment == monitoring.Production {
			c.append(RuleOWASPTopTen, ActionGroupDefault, Statement{
				ManagedGroup: &ManagedGroupStatement{VendorName: "AWS", GroupName: "AWSManagedRulesOWASPTopTenRuleSet"},
			})
		}
	}

	c.append(RuleRateLimit, ActionBlock, Statement{
		RateLimit: &RateLimitStatement{
			LimitPerIP:        in.RateLimitPerIP,
			ExcludePathPrefix: healthCheckPathPrefix,
		},
	})

	if in.GeoBlockEnabled {
		if len(in.BlockedCountries) == 0 {
			logger.Warn("geo blocking enabled with no blocked countries; rule omitted", map[string]any{
				"environment": string(in.Environment),
			})
		} else {
			countries := make([]string, len(in.BlockedCountries))
			copy(countries, in.BlockedCountries)
			c.append(RuleGeoBlock, ActionBlock, Statement{
				GeoMatch: &GeoMatchStatement{CountryCodes: countries},
			})
		}
	}

	if in.Environment == monitoring.Production {
		c.append(RuleAPIAbuse, ActionBlock, Statement{
			Compound: &CompoundStatement{
				PathPrefix: apiPathPrefix,
				LimitPerIP: apiAbuseRateLimit,
			},
		})
	}

	return c.rules
}

// composer assigns priorities by append order.
type composer struct {
	rules []RulePlan
}

func (c *composer) append(name string, action Action, statement Statement) {
	c.rules = append(c.rules, RulePlan{
		Name:      name,
		Priority:  len(c.rules) + 1,
		Action:    action,
		Statement: statement,
	})
}
