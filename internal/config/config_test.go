package config

import "testing"

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() failed validation: %v", err)
	}
}

func TestValidateRejectsUnknownModel(t *testing.T) {
	cfg := Default()
	cfg.Model.Name = "not-a-model"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an unknown model name")
	}
}

func TestValidateRequiresTwoTempsInPTMode(t *testing.T) {
	cfg := Default()
	cfg.Sampler.Mode = "pt"
	cfg.Sampler.Temps = []float64{1}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for a temperature ladder with fewer than 2 entries")
	}
}

func TestLoadFallsBackToDefaultWhenPathEmpty(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Model.Name != Default().Model.Name {
		t.Errorf("Load(\"\") = %+v, want the default config", cfg)
	}
}

func TestLoadFallsBackToDefaultWhenFileMissing(t *testing.T) {
	cfg, err := Load("/nonexistent/tracemh-demo-config.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sampler.NSamples != Default().Sampler.NSamples {
		t.Errorf("Load of a missing file = %+v, want the default config", cfg)
	}
}
