package runner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/config"
	diagerr "github.com/felipecaninnovaes/diagnostico-de-rede/pkg/errors"
)

func testRunner(t *testing.T) *Runner {
	t.Helper()
	return New(config.DefaultConfig())
}

func TestCaptureReturnsStdout(t *testing.T) {
	r := testRunner(t)

	out, err := r.capture(context.Background(), 5*time.Second, "test", "echo", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "hello" {
		t.Errorf("unexpected stdout: %q", out)
	}
}

func TestCaptureMissingCommand(t *testing.T) {
	r := testRunner(t)

	_, err := r.capture(context.Background(), time.Second, "test", "definitely-not-a-command-xyz")
	var diag *diagerr.DiagError
	if !errors.As(err, &diag) || diag.Code != diagerr.ErrCodeCommandNotFound {
		t.Fatalf("expected COMMAND_NOT_FOUND, got %v", err)
	}
}

func TestCaptureTimeout(t *testing.T) {
	r := testRunner(t)

	start := time.Now()
	_, err := r.capture(context.Background(), 100*time.Millisecond, "test", "sleep", "5")
	elapsed := time.Since(start)

	var diag *diagerr.DiagError
	if !errors.As(err, &diag) || diag.Code != diagerr.ErrCodeCommandTimeout {
		t.Fatalf("expected COMMAND_TIMEOUT, got %v", err)
	}
	if elapsed > 3*time.Second {
		t.Errorf("timeout not enforced, took %v", elapsed)
	}
}

func TestCaptureKeepsPartialOutputOnFailure(t *testing.T) {
	r := testRunner(t)

	// Command writes to stdout then exits nonzero.
	out, err := r.capture(context.Background(), 5*time.Second, "test",
		"sh", "-c", "echo partial; exit 3")
	if err == nil {
		t.Fatal("expected exit error")
	}
	if strings.TrimSpace(out) != "partial" {
		t.Errorf("partial stdout lost: %q", out)
	}
}

func TestContains(t *testing.T) {
	list := []string{"8.8.8.8", "1.1.1.1"}
	if !contains(list, "1.1.1.1") {
		t.Error("expected member to be found")
	}
	if contains(list, "9.9.9.9") {
		t.Error("expected non-member to be absent")
	}
}
