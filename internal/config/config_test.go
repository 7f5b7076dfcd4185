package config

import "testing"

func validConfig() Config {
	cfg := Config{
		Proxy:      ProxyConfig{APIKey: "zyte-key"},
		Completion: CompletionConfig{APIKey: "llm-key"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_MissingProxyKey(t *testing.T) {
	cfg := validConfig()
	cfg.Proxy.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing proxy api key")
	}
}

func TestValidate_MissingCompletionKey(t *testing.T) {
	cfg := validConfig()
	cfg.Completion.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing completion api key")
	}
}

func TestValidate_FuzzyThresholdRange(t *testing.T) {
	cfg := validConfig()
	cfg.Matching.FuzzyThreshold = 120

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for out-of-range fuzzy threshold")
	}

	expected := "matching.fuzzy_threshold must be between 0 and 100, got 120"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_WeightsMustSumToOne(t *testing.T) {
	cfg := validConfig()
	cfg.Matching.NameWeight = 0.5
	cfg.Matching.AddressWeight = 0.75

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for weights not summing to 1.0")
	}
}

func TestValidate_InvalidOpsPort(t *testing.T) {
	cfg := validConfig()
	cfg.Ops.Port = 70000

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid ops port")
	}
}

func TestValidate_OpsPortZeroDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.Ops.Port = 0

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error for disabled ops server: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Proxy.Endpoint != "https://api.zyte.com/v1/extract" {
		t.Errorf("expected default proxy endpoint, got %q", cfg.Proxy.Endpoint)
	}
	if cfg.Proxy.RatePerSec != 1000 {
		t.Errorf("expected Proxy.RatePerSec=1000, got %v", cfg.Proxy.RatePerSec)
	}
	if cfg.Proxy.SearchTimeoutSec != 15 {
		t.Errorf("expected SearchTimeoutSec=15, got %d", cfg.Proxy.SearchTimeoutSec)
	}
	if cfg.Proxy.DetailTimeoutSec != 30 {
		t.Errorf("expected DetailTimeoutSec=30, got %d", cfg.Proxy.DetailTimeoutSec)
	}
	if cfg.Registry.ResultLimit != 10 {
		t.Errorf("expected ResultLimit=10, got %d", cfg.Registry.ResultLimit)
	}
	if cfg.Completion.Model != "gpt-4o-mini" {
		t.Errorf("expected Model='gpt-4o-mini', got %q", cfg.Completion.Model)
	}
	if cfg.Completion.RatePerSec != 500 {
		t.Errorf("expected Completion.RatePerSec=500, got %v", cfg.Completion.RatePerSec)
	}
	if cfg.Matching.FuzzyThreshold != 50 {
		t.Errorf("expected FuzzyThreshold=50, got %v", cfg.Matching.FuzzyThreshold)
	}
	if cfg.Matching.NameWeight != 0.25 {
		t.Errorf("expected NameWeight=0.25, got %v", cfg.Matching.NameWeight)
	}
	if cfg.Matching.AddressWeight != 0.75 {
		t.Errorf("expected AddressWeight=0.75, got %v", cfg.Matching.AddressWeight)
	}
	if cfg.Activity.LowThreshold != 0.2 {
		t.Errorf("expected LowThreshold=0.2, got %v", cfg.Activity.LowThreshold)
	}
	if cfg.Pipeline.BatchSize != 15 {
		t.Errorf("expected BatchSize=15, got %d", cfg.Pipeline.BatchSize)
	}
	if cfg.Ops.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.Ops.ShutdownSec)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		Proxy:      ProxyConfig{RatePerSec: 50, SearchTimeoutSec: 5, DetailTimeoutSec: 60},
		Registry:   RegistryConfig{ResultLimit: 25},
		Completion: CompletionConfig{Model: "gpt-4o", RatePerSec: 20},
		Matching:   MatchingConfig{FuzzyThreshold: 80, NameWeight: 0.5, AddressWeight: 0.5},
		Pipeline:   PipelineConfig{BatchSize: 4},
	}
	cfg.ApplyDefaults()

	if cfg.Proxy.RatePerSec != 50 {
		t.Errorf("expected Proxy.RatePerSec=50, got %v", cfg.Proxy.RatePerSec)
	}
	if cfg.Registry.ResultLimit != 25 {
		t.Errorf("expected ResultLimit=25, got %d", cfg.Registry.ResultLimit)
	}
	if cfg.Completion.Model != "gpt-4o" {
		t.Errorf("expected Model='gpt-4o', got %q", cfg.Completion.Model)
	}
	if cfg.Matching.NameWeight != 0.5 {
		t.Errorf("expected NameWeight=0.5, got %v", cfg.Matching.NameWeight)
	}
	if cfg.Pipeline.BatchSize != 4 {
		t.Errorf("expected BatchSize=4, got %d", cfg.Pipeline.BatchSize)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("BIZVET_TEST_KEY", "secret")

	in := []byte("api_key: ${BIZVET_TEST_KEY}\nmodel: ${BIZVET_TEST_MODEL:-gpt-4o-mini}\n")
	out := string(expandEnvVars(in))

	expected := "api_key: secret\nmodel: gpt-4o-mini\n"
	if out != expected {
		t.Errorf("unexpected expansion:\ngot:  %q\nwant: %q", out, expected)
	}
}
