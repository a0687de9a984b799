package machine

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultBlank is used when a definition names no blank symbol.
const DefaultBlank = " "

var (
	// ErrHalted is returned when stepping a machine that has stopped.
	ErrHalted = errors.New("machine has halted")
	// ErrStepLimit is returned by Run when the machine is still going.
	ErrStepLimit = errors.New("step limit reached")
)

// Tape is an unbounded tape of single-symbol cells. Cells never written
// read as the blank symbol.
type Tape struct {
	blank string
	cells []string
	head  int // index into cells
	zero  int // index of the cell the head started on
}

// NewTape returns a tape holding input, one symbol per rune, with the head
// on the first symbol.
func NewTape(blank, input string) *Tape {
	t := &Tape{blank: blank}
	for _, r := range input {
		t.cells = append(t.cells, string(r))
	}
	if len(t.cells) == 0 {
		t.cells = []string{blank}
	}
	return t
}

// Read returns the symbol under the head.
func (t *Tape) Read() string { return t.cells[t.head] }

// Write replaces the symbol under the head.
func (t *Tape) Write(symbol string) { t.cells[t.head] = symbol }

// Move shifts the head one cell, growing the tape as needed.
func (t *Tape) Move(d Direction) {
	if d == Left {
		if t.head == 0 {
			t.cells = append([]string{t.blank}, t.cells...)
			t.zero++
			return
		}
		t.head--
		return
	}
	t.head++
	if t.head == len(t.cells) {
		t.cells = append(t.cells, t.blank)
	}
}

// Position returns the head position relative to where it started.
func (t *Tape) Position() int { return t.head - t.zero }

// Contents returns the written part of the tape with blank cells trimmed
// from both ends.
func (t *Tape) Contents() string {
	lo, hi := 0, len(t.cells)
	for lo < hi && t.cells[lo] == t.blank {
		lo++
	}
	for hi > lo && t.cells[hi-1] == t.blank {
		hi--
	}
	return strings.Join(t.cells[lo:hi], "")
}

// Window renders lookaround cells either side of the head, with the head
// cell in brackets.
func (t *Tape) Window(lookaround int) string {
	var sb strings.Builder
	for i := t.head - lookaround; i <= t.head+lookaround; i++ {
		sym := t.blank
		if i >= 0 && i < len(t.cells) {
			sym = t.cells[i]
		}
		if i == t.head {
			sb.WriteString("[" + sym + "]")
		} else {
			sb.WriteString(sym)
		}
	}
	return sb.String()
}

// Step records one transition taken by the runner.
type Step struct {
	From  string
	Read  string
	Write string // symbol left in the cell
	Move  Direction
	To    string
}

// Runner executes a definition against its tape.
type Runner struct {
	def     *Definition
	blank   string
	state   string
	tape    *Tape
	halted  bool
	history []Step
}

// NewRunner creates a runner on the definition's own input.
func NewRunner(def *Definition) (*Runner, error) {
	return NewRunnerInput(def, def.Input)
}

// NewRunnerInput creates a runner with the tape holding input.
func NewRunnerInput(def *Definition, input string) (*Runner, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid machine: %w", err)
	}
	blank := def.Blank
	if blank == "" {
		blank = DefaultBlank
	}
	return &Runner{
		def:   def,
		blank: blank,
		state: def.StartState,
		tape:  NewTape(blank, input),
	}, nil
}

// State returns the current state.
func (r *Runner) State() string { return r.state }

// Tape returns the tape.
func (r *Runner) Tape() *Tape { return r.tape }

// Halted reports whether the last step found no transition.
func (r *Runner) Halted() bool { return r.halted }

// Steps returns the number of transitions taken.
func (r *Runner) Steps() int { return len(r.history) }

// History returns the transitions taken so far.
func (r *Runner) History() []Step { return r.history }

// lookup finds the transition for symbol: an entry listing the symbol
// wins over a wildcard entry.
func (r *Runner) lookup(symbol string) *Transition {
	s := r.def.State(r.state)
	if s == nil {
		return nil
	}
	var wild *Transition
	for _, t := range s.Transitions {
		if t.Read == Wildcard {
			wild = t
			continue
		}
		for _, sym := range t.Symbols() {
			if sym == symbol {
				return t
			}
		}
	}
	return wild
}

// Step takes one transition. The machine halts when the current state has
// no transition for the symbol under the head; that step returns false.
func (r *Runner) Step() (bool, error) {
	if r.halted {
		return false, ErrHalted
	}
	read := r.tape.Read()
	t := r.lookup(read)
	if t == nil {
		r.halted = true
		return false, nil
	}

	write := read
	if t.Write != nil {
		write = *t.Write
		r.tape.Write(write)
	}
	r.tape.Move(t.Move)
	to := t.Target(r.state)

	r.history = append(r.history, Step{
		From:  r.state,
		Read:  read,
		Write: write,
		Move:  t.Move,
		To:    to,
	})
	r.state = to
	return true, nil
}

// Run steps until the machine halts or max steps have been taken.
func (r *Runner) Run(max int) error {
	for i := 0; i < max; i++ {
		ok, err := r.Step()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	if r.lookup(r.tape.Read()) == nil {
		r.halted = true
		return nil
	}
	return fmt.Errorf("%w after %d steps", ErrStepLimit, r.Steps())
}

// Reset returns the runner to the start state on a fresh tape.
func (r *Runner) Reset(input string) {
	r.state = r.def.StartState
	r.tape = NewTape(r.blank, input)
	r.halted = false
	r.history = nil
}

// Status returns a one-line summary of the current configuration.
func (r *Runner) Status() string {
	status := fmt.Sprintf("State: %s  Tape: %s", r.state, r.tape.Window(5))
	if r.halted {
		status += " [halted]"
	}
	return status
}
