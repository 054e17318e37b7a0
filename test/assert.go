package test

import (
	"bytes"
	"errors"
	"testing"
)

func Equal[T comparable](t testing.TB, expected, actual T) bool {
	t.Helper()

	if expected != actual {
		t.Errorf(""+
			"Not equal: \n"+
			"Expected: %v\n"+
			"Actual: %v", expected, actual)
		return false
	}

	return true
}

func EqualBytes(t testing.TB, expected, actual []byte) bool {
	t.Helper()

	if !bytes.Equal(expected, actual) {
		t.Errorf(""+
			"Not equal: \n"+
			"Expected: %q\n"+
			"Actual: %q", expected, actual)
		return false
	}

	return true
}

func True(t testing.TB, value bool, msg string) bool {
	t.Helper()

	if !value {
		t.Error(msg)
		return false
	}

	return true
}

// NoError stops the test on err.
func NoError(t testing.TB, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func ErrorIs(t testing.TB, err, target error) bool {
	t.Helper()

	if !errors.Is(err, target) {
		t.Errorf(""+
			"Error mismatch: \n"+
			"Expected: %v\n"+
			"Actual: %v", target, err)
		return false
	}

	return true
}
