package naming

import "testing"

func TestNormalizeEnvironment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"prod", "production"},
		{"production", "production"},
		{"live", "production"},
		{"stg", "staging"},
		{"stage", "staging"},
		{"staging", "staging"},
		{"Staging", "staging"},
		{"My Env!", "my-env"},
	}
	for _, tt := range tests {
		if got := NormalizeEnvironment(tt.in); got != tt.want {
			t.Fatalf("NormalizeEnvironment(%q)=%q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResourceName(t *testing.T) {
	if got := ResourceName("WebTheory", "Cluster", "prod"); got != "webtheory-cluster-production" {
		t.Fatalf("ResourceName app-resource-environment: %q", got)
	}
	if got := ResourceName("WebTheory", "", "stg"); got != "webtheory-staging" {
		t.Fatalf("ResourceName app-environment: %q", got)
	}
}

func TestAlarmName_PreservesTemplate(t *testing.T) {
	if got := AlarmName("WebTheory", "production", "HighCpuUtilization"); got != "WebTheory-production-HighCpuUtilization" {
		t.Fatalf("AlarmName: %q", got)
	}
	// Casing must survive: external runbooks hardcode these names.
	if got := AlarmName("WebTheory", "staging", "Http5xxErrors"); got != "WebTheory-staging-Http5xxErrors" {
		t.Fatalf("AlarmName: %q", got)
	}
}

func TestMetricNamespace(t *testing.T) {
	if got := MetricNamespace("WebTheory", "staging"); got != "WebTheory/staging" {
		t.Fatalf("MetricNamespace: %q", got)
	}
}
