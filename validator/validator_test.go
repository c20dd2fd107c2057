package validator

import (
	"testing"
	"time"

	"github.com/aisgo/posibel/errors"
)

func TestValidate_AllowsStructValueInput(t *testing.T) {
	t.Parallel()

	type Inner struct {
		Email string `validate:"required,email" error_msg:"required:email required|email:email invalid"`
	}
	type Req struct {
		Inner Inner
		When  time.Time
	}

	v := New()

	if err := v.Validate(Req{}); err == nil {
		t.Fatalf("expected validation error, got nil")
	}
}

type registerRequest struct {
	Email        string `validate:"required,email,min=5" error_msg:"email:email invalid"`
	Password     string `validate:"required,min=9" error_msg:"min:password too short"`
	Confirmation string `validate:"required,eqfield=Password" error_msg:"eqfield:passwords do not match"`
}

func TestValidate_CustomMessages(t *testing.T) {
	t.Parallel()

	v := New()
	err := v.Validate(&registerRequest{Email: "nope", Password: "short", Confirmation: "other"})
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T %v", err, err)
	}
	if got := ve.Get("Email"); len(got) != 1 || got[0] != "email invalid" {
		t.Fatalf("unexpected email errors %v", got)
	}
	if got := ve.Get("Password"); len(got) != 1 || got[0] != "password too short" {
		t.Fatalf("unexpected password errors %v", got)
	}
	if got := ve.Get("Confirmation"); len(got) != 1 || got[0] != "passwords do not match" {
		t.Fatalf("unexpected confirmation errors %v", got)
	}
}

func TestValidate_NestedPathAndFallback(t *testing.T) {
	t.Parallel()

	type Inner struct {
		Name string `validate:"min=2"`
	}
	type Req struct {
		Inner *Inner
	}

	err := New().Validate(Req{Inner: &Inner{Name: "x"}})
	ve, ok := err.(*ValidationError)
	if !ok || len(ve.Get("Inner.Name")) != 1 {
		t.Fatalf("expected nested error, got %v", err)
	}
}

func TestCheck_ReturnsInvalidArgument(t *testing.T) {
	t.Parallel()

	v := New()
	if err := v.Check(&registerRequest{Email: "jane@example.com", Password: "123456789", Confirmation: "123456789"}); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	err := v.Check(&registerRequest{})
	if errors.Code(err) != errors.ErrCodeInvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if v.Check(nil) != nil {
		t.Fatalf("nil input must pass")
	}
}

func TestValidationError_StableOrder(t *testing.T) {
	t.Parallel()

	ve := &ValidationError{}
	ve.Add("Password", "too short")
	ve.Add("Email", "required")
	ve.Add("Email", "invalid")

	if got := ve.Error(); got != "Email: required, invalid; Password: too short" {
		t.Fatalf("unexpected message %q", got)
	}
	if ve.Get("Missing") != nil {
		t.Fatalf("expected nil for unknown path")
	}
}

func TestParseMessages(t *testing.T) {
	t.Parallel()

	rules := parseMessages("required: needed | email:bad:format|broken")
	if rules["required"] != "needed" || rules["email"] != "bad:format" {
		t.Fatalf("unexpected rules %v", rules)
	}
	if _, ok := rules["broken"]; ok {
		t.Fatalf("entries without a colon must be ignored")
	}
}
