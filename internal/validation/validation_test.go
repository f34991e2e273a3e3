package validation

import (
	"strings"
	"testing"
)

type signIn struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type order struct {
	IDs []string `json:"ids" validate:"required,unique,dive,uuid"`
}

func TestStruct_Valid(t *testing.T) {
	if err := Struct(signIn{Email: "admin@example.com", Password: "correct-horse"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStruct_UsesJSONNames(t *testing.T) {
	err := Struct(signIn{Email: "nope", Password: "short"})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "email: must be a valid email address") {
		t.Errorf("missing email message in %q", msg)
	}
	if !strings.Contains(msg, "password: must be at least 8") {
		t.Errorf("missing password message in %q", msg)
	}
}

func TestStruct_Duplicates(t *testing.T) {
	id := "5b7c9f1e-3f7a-4c55-9a2b-0d6c2f1e8a90"
	err := Struct(order{IDs: []string{id, id}})
	if err == nil || !strings.Contains(err.Error(), "ids: must not contain duplicates") {
		t.Errorf("expected duplicate error, got %v", err)
	}
}
