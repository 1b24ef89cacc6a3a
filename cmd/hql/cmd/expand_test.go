package cmd

import (
	"strings"
	"testing"
)

func TestRunExpandPrintsExpandedForms(t *testing.T) {
	oldEval := expandEvalExpr
	defer func() { expandEvalExpr = oldEval }()
	expandEvalExpr = "(when true 1 2)"

	output, err := captureStdout(t, func() error {
		return runExpand(expandCmd, nil)
	})
	if err != nil {
		t.Fatalf("runExpand failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "[0]") {
		t.Errorf("expected at least one indexed form in output, got: %s", output)
	}
	if !strings.Contains(output, "if") {
		t.Errorf("expected 'when' to expand into an 'if' form, got: %s", output)
	}
}

func TestRunExpandReportsUnclosedForm(t *testing.T) {
	oldEval := expandEvalExpr
	defer func() { expandEvalExpr = oldEval }()
	expandEvalExpr = "(+ 1 2"

	_, err := captureStdout(t, func() error {
		return runExpand(expandCmd, nil)
	})
	if err == nil {
		t.Error("expected a read error to propagate out of runExpand")
	}
}
