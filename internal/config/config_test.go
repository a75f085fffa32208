package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	if c.Retrieval.TopK != DefaultTopK {
		t.Errorf("top_k = %d, want %d", c.Retrieval.TopK, DefaultTopK)
	}
	if c.Advisory.Timeout != DefaultAdvisoryTimeout {
		t.Errorf("timeout = %s", c.Advisory.Timeout)
	}
	if c.Reference.Policies != "data/policies" {
		t.Errorf("policies = %q", c.Reference.Policies)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFromFile_Valid(t *testing.T) {
	path := writeConfig(t, `
reference:
  members: ref/members.yaml
  history: ref/history.parquet
retrieval:
  top_k: 5
advisory:
  enabled: true
  model: mistral
  timeout: 30s
  trigger_score: 0.5
`)
	c := Default()
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if c.Reference.Members != "ref/members.yaml" {
		t.Errorf("members = %q", c.Reference.Members)
	}
	if c.Reference.CoverageRules != "data/coverage_rules.json" {
		t.Errorf("coverage rules should keep default, got %q", c.Reference.CoverageRules)
	}
	if c.Reference.History != "ref/history.parquet" {
		t.Errorf("history = %q", c.Reference.History)
	}
	if c.Retrieval.TopK != 5 {
		t.Errorf("top_k = %d", c.Retrieval.TopK)
	}
	if !c.Advisory.Enabled || c.Advisory.Model != "mistral" {
		t.Errorf("advisory = %+v", c.Advisory)
	}
	if c.Advisory.Timeout != 30*time.Second {
		t.Errorf("timeout = %s", c.Advisory.Timeout)
	}
	if c.Advisory.Endpoint != DefaultAdvisoryEndpoint {
		t.Errorf("endpoint = %q", c.Advisory.Endpoint)
	}
	if c.Advisory.TriggerScore != 0.5 {
		t.Errorf("trigger = %v", c.Advisory.TriggerScore)
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	for name, body := range map[string]string{
		"negative top_k":   "retrieval:\n  top_k: -1\n",
		"negative timeout": "advisory:\n  timeout: -5s\n",
		"trigger above 1":  "advisory:\n  trigger_score: 1.5\n",
		"bad yaml":         "reference: [unclosed\n",
	} {
		t.Run(name, func(t *testing.T) {
			c := Default()
			if err := c.LoadFromFile(writeConfig(t, body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	c := Default()
	if err := c.LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateWithDSN(t *testing.T) {
	c := Default()
	if err := c.ValidateWithDSN(); err == nil {
		t.Fatal("expected error without DSN")
	}
	c.DSN = "postgres://localhost/claims"
	if err := c.ValidateWithDSN(); err != nil {
		t.Fatalf("ValidateWithDSN: %v", err)
	}
}

func TestValidate_AdvisoryWithoutEndpoint(t *testing.T) {
	c := Default()
	c.Advisory.Enabled = true
	c.Advisory.Endpoint = ""
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for enabled advisory without endpoint")
	}
}
