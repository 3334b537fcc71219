package validate

import (
	"errors"
	"testing"
)

type sampleRequest struct {
	ToRole string `validate:"required,oneof=doctor nurse admin"`
	Status string `validate:"omitempty,oneof=pending accepted rejected completed"`
	Notes  string `validate:"max=10"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	err := v.Validate(&sampleRequest{ToRole: "doctor", Status: "pending"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	v := New()
	err := v.Validate(&sampleRequest{Status: "bogus", Notes: "this is far too long"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !IsValidation(err) {
		t.Error("expected IsValidation to be true")
	}

	details := Details(err)
	if len(details) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %+v", len(details), details)
	}

	byField := make(map[string]FieldError)
	for _, d := range details {
		byField[d.Field] = d
	}
	if byField["toRole"].Rule != "required" {
		t.Errorf("expected required rule for toRole, got %+v", byField["toRole"])
	}
	if byField["status"].Rule != "oneof" {
		t.Errorf("expected oneof rule for status, got %+v", byField["status"])
	}
	if byField["notes"].Rule != "max" {
		t.Errorf("expected max rule for notes, got %+v", byField["notes"])
	}
}

func TestDetails_NonValidatorError(t *testing.T) {
	details := Details(errors.New("boom"))
	if len(details) != 1 || details[0].Message != "boom" {
		t.Errorf("unexpected details: %+v", details)
	}
}

func TestIsValidation_NonValidatorError(t *testing.T) {
	if IsValidation(errors.New("boom")) {
		t.Error("expected false for plain error")
	}
}
