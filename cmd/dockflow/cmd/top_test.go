package cmd

import (
	"strings"
	"testing"
)

func TestTopCommand_PrintsRanking(t *testing.T) {
	layout := seedWorkspace(t)

	out, err := execute(t, "top", "--workdir", layout.WorkDir, "-n", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	betaIdx := strings.Index(out, "beta")
	alphaIdx := strings.Index(out, "alpha")
	if betaIdx < 0 || alphaIdx < 0 {
		t.Fatalf("expected both candidates in output, got: %s", out)
	}
	if betaIdx > alphaIdx {
		t.Errorf("expected beta ranked before alpha, got: %s", out)
	}
}

func TestTopCommand_LimitsCount(t *testing.T) {
	layout := seedWorkspace(t)

	out, err := execute(t, "top", "--workdir", layout.WorkDir, "-n", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "beta") {
		t.Errorf("expected best candidate, got: %s", out)
	}
	if strings.Contains(out, "alpha") {
		t.Errorf("expected only one candidate, got: %s", out)
	}
}
