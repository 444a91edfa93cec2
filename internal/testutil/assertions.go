// Package testutil holds small assertion helpers shared by package tests.
package testutil

import (
	"strings"
	"testing"
)

// AssertEqual reports got and want when they differ.
func AssertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("expected:\n  %v\ngot:\n  %v", want, got)
	}
}

// AssertPtr checks that got is non-nil and points at want.
func AssertPtr[T comparable](t *testing.T, got *T, want T) {
	t.Helper()
	if got == nil {
		t.Errorf("expected:\n  %v\ngot:\n  <nil>", want)
		return
	}
	if *got != want {
		t.Errorf("expected:\n  %v\ngot:\n  %v", want, *got)
	}
}

// AssertNil checks that an optional field is unset.
func AssertNil[T any](t *testing.T, got *T) {
	t.Helper()
	if got != nil {
		t.Errorf("expected <nil>, got %v", *got)
	}
}

// AssertContains checks that s contains substr.
func AssertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected output to contain %q, got:\n%s", substr, s)
	}
}

// AssertNoError stops the test on a non-nil err.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
}

// AssertError stops the test when err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got <nil>")
	}
}
