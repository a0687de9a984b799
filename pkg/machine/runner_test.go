package machine

import (
	"errors"
	"testing"
)

func mustRunner(t *testing.T, text string) *Runner {
	t.Helper()
	r, err := NewRunner(mustParse(t, text))
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	return r
}

func TestRunBinaryIncrement(t *testing.T) {
	r := mustRunner(t, binaryIncrement)

	if err := r.Run(100); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !r.Halted() {
		t.Error("expected machine to halt")
	}
	if r.State() != "done" {
		t.Errorf("expected to halt in done, got %q", r.State())
	}
	if got := r.Tape().Contents(); got != "1100" {
		t.Errorf("expected tape 1100, got %q", got)
	}
	if r.Steps() != 8 {
		t.Errorf("expected 8 steps, got %d", r.Steps())
	}

	if _, err := r.Step(); !errors.Is(err, ErrHalted) {
		t.Errorf("expected ErrHalted stepping a halted machine, got %v", err)
	}
}

func TestRunHistory(t *testing.T) {
	r := mustRunner(t, binaryIncrement)
	if err := r.Run(5); err != nil && !errors.Is(err, ErrStepLimit) {
		t.Fatal(err)
	}

	h := r.History()
	if len(h) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(h))
	}
	want := Step{From: "right", Read: " ", Write: " ", Move: Left, To: "carry"}
	if h[4] != want {
		t.Errorf("expected %+v, got %+v", want, h[4])
	}
	if h[0].To != "right" {
		t.Errorf("expected same-state step to stay in right, got %q", h[0].To)
	}
}

func TestRunStepLimit(t *testing.T) {
	r := mustRunner(t, "start state: a\ntable:\n  a:\n    '*': R\n")

	err := r.Run(50)
	if !errors.Is(err, ErrStepLimit) {
		t.Fatalf("expected ErrStepLimit, got %v", err)
	}
	if r.Halted() || r.Steps() != 50 {
		t.Errorf("expected 50 steps without halting, got %d (halted %v)", r.Steps(), r.Halted())
	}
}

func TestRunGrowsLeft(t *testing.T) {
	r := mustRunner(t, `input: '1'
start state: a
table:
  a:
    1: {write: 0, L: b}
  b:
    ' ': {write: x, R: c}
  c:
`)
	if _, err := r.Step(); err != nil {
		t.Fatal(err)
	}
	if r.Tape().Position() != -1 {
		t.Errorf("expected head left of the start, got %d", r.Tape().Position())
	}

	if err := r.Run(10); err != nil {
		t.Fatal(err)
	}
	if got := r.Tape().Contents(); got != "x0" {
		t.Errorf("expected tape x0, got %q", got)
	}
	if got := r.Tape().Window(1); got != "x[0] " {
		t.Errorf("expected window %q, got %q", "x[0] ", got)
	}
}

func TestLookupPrefersSymbol(t *testing.T) {
	r := mustRunner(t, `input: '1'
start state: a
table:
  a:
    '*': {R: wild}
    1: {L: exact}
  wild:
  exact:
`)
	if _, err := r.Step(); err != nil {
		t.Fatal(err)
	}
	if r.State() != "exact" {
		t.Errorf("expected listed symbol to win over wildcard, got %q", r.State())
	}
}

func TestRunnerReset(t *testing.T) {
	r := mustRunner(t, binaryIncrement)
	if err := r.Run(100); err != nil {
		t.Fatal(err)
	}

	r.Reset("111")
	if r.Halted() || r.Steps() != 0 || r.State() != "right" {
		t.Fatalf("expected fresh runner, got %s", r.Status())
	}
	if err := r.Run(100); err != nil {
		t.Fatal(err)
	}
	if got := r.Tape().Contents(); got != "1000" {
		t.Errorf("expected 111+1 = 1000, got %q", got)
	}
}

func TestNewRunnerRejectsInvalid(t *testing.T) {
	if _, err := NewRunner(mustParse(t, "start state: x\ntable:\n  a:\n")); err == nil {
		t.Error("expected error for missing start state")
	}
}
