// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"math"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertCloseAbs checks that got is within abs of want.
func AssertCloseAbs(t *testing.T, name string, got, want, abs float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > abs {
		t.Errorf("%s = %.15g, want %.15g (abs tol %g)", name, got, want, abs)
	}
}

// AssertCloseRel checks that got is within rel relative tolerance of
// want. For want == 0 it falls back to an absolute comparison against
// rel.
func AssertCloseRel(t *testing.T, name string, got, want, rel float64) {
	t.Helper()
	if math.IsNaN(got) {
		t.Errorf("%s = NaN, want %.15g", name, want)
		return
	}
	tol := rel * math.Abs(want)
	if want == 0 {
		tol = rel
	}
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %.15g, want %.15g (rel tol %g)", name, got, want, rel)
	}
}
