package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeFieldRequired, "nom is required")
	if !stderrors.Is(err, New(CodeFieldRequired, "other message")) {
		t.Fatal("expected errors with the same code to match")
	}
	if stderrors.Is(err, New(CodeStoreFailure, "nom is required")) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeStoreFailure, "insert exposant", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable")
	}
}

func TestErrorRendersCauseChain(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeStoreFailure, "insert exposant", cause)
	if got := err.Error(); got != "insert exposant: disk full" {
		t.Fatalf("error = %q", got)
	}
	if got := New(CodeFieldRequired, "nom is required").Error(); got != "nom is required" {
		t.Fatalf("error = %q", got)
	}
}

func TestCodeOfTraversesWrapping(t *testing.T) {
	err := fmt.Errorf("add staff: %w", New(CodeBadgeIssueFailure, "badge service unavailable"))
	if got := CodeOf(err); got != CodeBadgeIssueFailure {
		t.Fatalf("code = %q, want %q", got, CodeBadgeIssueFailure)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("code = %q, want %q", got, CodeUnknown)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeFieldRequired, http.StatusBadRequest},
		{CodeExposantNotFound, http.StatusNotFound},
		{CodeSessionInvalid, http.StatusUnauthorized},
		{CodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{CodeStoreFailure, http.StatusInternalServerError},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Fatalf("status for %q = %d, want %d", tc.code, got, tc.want)
		}
	}
}
