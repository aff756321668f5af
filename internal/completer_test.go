package internal

import (
	"context"
	"strings"
	"testing"
)

func TestCannedCompleter_Deterministic(t *testing.T) {
	c := CannedCompleter{}

	first, err := c.Complete(context.Background(), "how are my sales?", nil)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	second, err := c.Complete(context.Background(), "How are my sales? ", nil)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	// Case and surrounding whitespace must not change the reply.
	if first != second {
		t.Errorf("Complete() not deterministic: %q vs %q", first, second)
	}
	if first == "" {
		t.Error("Complete() returned empty reply")
	}
}

func TestCannedCompleter_ReferencesHistory(t *testing.T) {
	c := CannedCompleter{}
	history := []*Step{NewStep(4, "q", "a")}

	reply, err := c.Complete(context.Background(), "what next?", history)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if !strings.Contains(reply, "step 4") {
		t.Errorf("Complete() = %q, want reference to step 4", reply)
	}
}
