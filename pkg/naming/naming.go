package naming

import (
	"regexp"
	"strings"
)

var (
	nonAlnum  = regexp.MustCompile(`[^a-z0-9-]+`)
	multiDash = regexp.MustCompile(`-+`)
)

func sanitizePart(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	value = strings.ReplaceAll(value, "_", "-")
	value = strings.ReplaceAll(value, " ", "-")
	value = nonAlnum.ReplaceAllString(value, "-")
	value = multiDash.ReplaceAllString(value, "-")
	value = strings.Trim(value, "-")
	return value
}

// NormalizeEnvironment maps environment aliases to canonical values.
//
// Canonical environments are lowercased and safe for typical resource naming schemes.
func NormalizeEnvironment(environment string) string {
	environment = strings.ToLower(strings.TrimSpace(environment))
	switch environment {
	case "prod", "production", "live":
		return "production"
	case "stg", "stage", "staging":
		return "staging"
	default:
		return sanitizePart(environment)
	}
}

// ResourceName returns a deterministic resource name:
// - <app>-<resource>-<environment>
func ResourceName(appName, resource, environment string) string {
	app := sanitizePart(appName)
	resource = sanitizePart(resource)
	environment = NormalizeEnvironment(environment)

	parts := []string{app}
	if resource != "" {
		parts = append(parts, resource)
	}
	if environment != "" {
		parts = append(parts, environment)
	}
	return strings.Join(parts, "-")
}

// AlarmName returns the externally referenced alarm name:
// <Prefix>-<Environment>-<AlarmKind>.
//
// Unlike ResourceName, parts keep their casing: rendered names are looked
// up by dashboards and runbooks outside this repository, so the template
// is preserved byte for byte.
func AlarmName(prefix, environment, kind string) string {
	return strings.Join([]string{
		strings.TrimSpace(prefix),
		strings.TrimSpace(environment),
		strings.TrimSpace(kind),
	}, "-")
}

// MetricNamespace returns the namespace for log-derived metrics:
// <Prefix>/<Environment>.
func MetricNamespace(prefix, environment string) string {
	return strings.TrimSpace(prefix) + "/" + strings.TrimSpace(environment)
}
