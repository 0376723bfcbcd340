package validation

import (
	"strings"
	"testing"

	"github.com/skillsenselab/authbridge/errors"
)

type sampleConfig struct {
	Name     string `mapstructure:"name" validate:"required"`
	Endpoint string `mapstructure:"endpoint" validate:"required,url"`
	Mode     string `mapstructure:"mode" validate:"omitempty,oneof=popup redirect"`
}

func TestValidate_Valid(t *testing.T) {
	cfg := sampleConfig{Name: "enterprise", Endpoint: "https://idp.example.com", Mode: "popup"}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate_ReportsAllFields(t *testing.T) {
	err := Validate(sampleConfig{Endpoint: "not-a-url", Mode: "banner"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}

	msg := err.Error()
	for _, want := range []string{"name", "endpoint", "mode"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected message to mention %q: %s", want, msg)
		}
	}
}

func TestValidate_UsesMapstructureTagNames(t *testing.T) {
	type withTag struct {
		ClientSecret string `mapstructure:"client_secret" validate:"required"`
	}
	err := Validate(withTag{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "client_secret") {
		t.Errorf("expected mapstructure name in message, got %q", err.Error())
	}
}
