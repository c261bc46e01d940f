package validate_test

import (
	"strings"
	"testing"

	"github.com/shashiranjanraj/sampleapp/pkg/validate"
)

type signupInput struct {
	Name     string  `json:"name"     validate:"required,min=2,max=50"`
	Email    string  `json:"email"    validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Role     string  `json:"role"     validate:"omitempty,oneof=admin user"`
	Score    float64 `json:"score"    validate:"gte=0,max=100"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(signupInput{
		Name:     "john",
		Email:    "john@example.com",
		Password: "secret123",
		Role:     "user",
		Score:    85.5,
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(signupInput{})
	for _, field := range []string{"name", "email", "password"} {
		if !strings.Contains(errs[field], "required") {
			t.Errorf("expected required error for %s, got %q", field, errs[field])
		}
	}
	if _, ok := errs["role"]; ok {
		t.Errorf("empty role is optional, got %q", errs["role"])
	}
}

func TestKeysUseJSONNames(t *testing.T) {
	errs := validate.Struct(signupInput{
		Name:     "j",
		Email:    "not-an-email",
		Password: "short",
		Role:     "root",
		Score:    101,
	})
	want := map[string]string{
		"name":     "The name must be at least 2 characters.",
		"email":    "The email must be a valid email address.",
		"password": "The password must be at least 8 characters.",
		"role":     "The selected role is invalid.",
		"score":    "The score may not be greater than 100.",
	}
	for field, msg := range want {
		if errs[field] != msg {
			t.Errorf("%s: got %q, want %q", field, errs[field], msg)
		}
	}
}

func TestNonStruct(t *testing.T) {
	errs := validate.Struct(42)
	if !validate.HasErrors(errs) {
		t.Error("expected an error for a non-struct value")
	}
}
