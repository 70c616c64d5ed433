package ui

import "testing"

func TestSpinnerLifecycle(t *testing.T) {
	// Stop without start is a no-op.
	StopSpinner()

	StartSpinner("working...")
	if !spinnerActive {
		t.Fatal("spinner not active after start")
	}

	// A second start while active must not spawn another spinner.
	StartSpinner("working...")

	StopSpinner()
	if spinnerActive {
		t.Error("spinner still active after stop")
	}

	// Stopping again stays a no-op.
	StopSpinner()
}
