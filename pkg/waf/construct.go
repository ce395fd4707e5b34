package waf

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awswafv2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/theory-cloud/webtheory/pkg/monitoring"
	"github.com/theory-cloud/webtheory/pkg/naming"
	"github.com/theory-cloud/webtheory/pkg/observability"
)

// WafProtectionProps configures the web ACL for one environment.
type WafProtectionProps struct {
	Prefix      string
	Environment monitoring.Environment

	RateLimitPerIP      int
	GeoBlockEnabled     bool
	BlockedCountries    []string
	ManagedRulesEnabled bool

	// AssociationTarget is the load balancer the ACL attaches to. An
	// unresolved identifier defers the association to a later binding pass;
	// the ACL itself is still defined.
	AssociationTarget Identifier

	Logger observability.StructuredLogger
}

// WafProtection renders the composed rule set as a regional web ACL and,
// when the target is resolved, associates it with the load balancer.
type WafProtection struct {
	constructs.Construct

	Rules       []RulePlan
	WebACL      awswafv2.CfnWebACL
	Association awswafv2.CfnWebACLAssociation
}

func NewWafProtection(scope constructs.Construct, id string, props *WafProtectionProps) *WafProtection {
	logger := props.Logger
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}

	construct := constructs.NewConstruct(scope, jsii.String(id))
	w := &WafProtection{Construct: construct}

	w.Rules = Compose(ComposeInput{
		Environment:         props.Environment,
		RateLimitPerIP:      props.RateLimitPerIP,
		GeoBlockEnabled:     props.GeoBlockEnabled,
		BlockedCountries:    props.BlockedCountries,
		ManagedRulesEnabled: props.ManagedRulesEnabled,
	}, logger)

	rendered := make([]interface{}, 0, len(w.Rules))
	for _, rule := range w.Rules {
		rendered = append(rendered, renderRule(rule))
	}

	aclName := naming.ResourceName(props.Prefix, "web-acl", string(props.Environment))
	w.WebACL = awswafv2.NewCfnWebACL(construct, jsii.String("WebACL"), &awswafv2.CfnWebACLProps{
		Name:          jsii.String(aclName),
		Scope:         jsii.String("REGIONAL"),
		DefaultAction: &awswafv2.CfnWebACL_DefaultActionProperty{Allow: &awswafv2.CfnWebACL_AllowActionProperty{}},
		VisibilityConfig: &awswafv2.CfnWebACL_VisibilityConfigProperty{
			CloudWatchMetricsEnabled: jsii.Bool(true),
			SampledRequestsEnabled:   jsii.Bool(true),
			MetricName:               jsii.String(aclName),
		},
		Rules: rendered,
	})

	if props.AssociationTarget.IsResolved() {
		w.Association = awswafv2.NewCfnWebACLAssociation(construct, jsii.String("Association"), &awswafv2.CfnWebACLAssociationProps{
			ResourceArn: jsii.String(props.AssociationTarget.ResolvedValue()),
			WebAclArn:   w.WebACL.AttrArn(),
		})
	} else {
		logger.Warn("web ACL association deferred: target not resolved", map[string]any{
			"environment": string(props.Environment),
			"target":      props.AssociationTarget.Hint(),
		})
	}

	logger.Info("web ACL rendered", map[string]any{
		"environment": string(props.Environment),
		"rules":       len(w.Rules),
	})
	return w
}

func renderRule(rule RulePlan) *awswafv2.CfnWebACL_RuleProperty {
	rendered := &awswafv2.CfnWebACL_RuleProperty{
		Name:      jsii.String(rule.Name),
		Priority:  jsii.Number(float64(rule.Priority)),
		Statement: renderStatement(rule.Statement),
		VisibilityConfig: &awswafv2.CfnWebACL_VisibilityConfigProperty{
			CloudWatchMetricsEnabled: jsii.Bool(true),
			SampledRequestsEnabled:   jsii.Bool(true),
			MetricName:               jsii.String(rule.Name),
		},
	}
	switch rule.Action {
	case ActionGroupDefault:
		rendered.OverrideAction = &awswafv2.CfnWebACL_OverrideActionProperty{None: map[string]interface{}{}}
	default:
		rendered.Action = &awswafv2.CfnWebACL_RuleActionProperty{Block: &awswafv2.CfnWebACL_BlockActionProperty{}}
	}
	return rendered
}

func renderStatement(statement Statement) *awswafv2.CfnWebACL_StatementProperty {
	switch {
	case statement.ManagedGroup != nil:
		return &awswafv2.CfnWebACL_StatementProperty{
			ManagedRuleGroupStatement: &awswafv2.CfnWebACL_ManagedRuleGroupStatementProperty{
				VendorName: jsii.String(statement.ManagedGroup.VendorName),
				Name:       jsii.String(statement.ManagedGroup.GroupName),
			},
		}
	case statement.RateLimit != nil:
		rate := &awswafv2.CfnWebACL_RateBasedStatementProperty{
			AggregateKeyType: jsii.String("IP"),
			Limit:            jsii.Number(float64(statement.RateLimit.LimitPerIP)),
		}
		if statement.RateLimit.ExcludePathPrefix != "" {
			rate.ScopeDownStatement = &awswafv2.CfnWebACL_StatementProperty{
				NotStatement: &awswafv2.CfnWebACL_NotStatementProperty{
					Statement: pathPrefixStatement(statement.RateLimit.ExcludePathPrefix),
				},
			}
		}
		return &awswafv2.CfnWebACL_StatementProperty{RateBasedStatement: rate}
	case statement.GeoMatch != nil:
		codes := make([]*string, 0, len(statement.GeoMatch.CountryCodes))
		for _, code := range statement.GeoMatch.CountryCodes {
			codes = append(codes, jsii.String(code))
		}
		return &awswafv2.CfnWebACL_StatementProperty{
			GeoMatchStatement: &awswafv2.CfnWebACL_GeoMatchStatementProperty{CountryCodes: &codes},
		}
	default:
		// Compound: a rate-based statement scoped down to the path prefix.
		// Rate-based statements cannot nest inside AND statements, so the
		// "path AND rate" semantics render as a scope-down.
		return &awswafv2.CfnWebACL_StatementProperty{
			RateBasedStatement: &awswafv2.CfnWebACL_RateBasedStatementProperty{
				AggregateKeyType:   jsii.String("IP"),
				Limit:              jsii.Number(float64(statement.Compound.LimitPerIP)),
				ScopeDownStatement: pathPrefixStatement(statement.Compound.PathPrefix),
			},
		}
	}
}

func pathPrefixStatement(prefix string) *awswafv2.CfnWebACL_StatementProperty {
	return &awswafv2.CfnWebACL_StatementProperty{
		ByteMatchStatement: &awswafv2.CfnWebACL_ByteMatchStatementProperty{
			FieldToMatch:         &awswafv2.CfnWebACL_FieldToMatchProperty{UriPath: map[string]interface{}{}},
			PositionalConstraint: jsii.String("STARTS_WITH"),
			SearchString:         jsii.String(prefix),
			TextTransformations: []interface{}{
				&awswafv2.CfnWebACL_TextTransformationProperty{
					Priority: jsii.Number(0),
					Type:     jsii.String("NONE"),
				},
			},
		},
	}
}
