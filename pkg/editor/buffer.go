package editor

import "errors"

// Buffer is the text editor holding the machine definition.
type Buffer interface {
	Text() string
	SetText(text string) error
}

// StringBuffer is an in-memory Buffer.
type StringBuffer struct {
	text   string
	writes int

	// FailNext makes the next SetText return it without writing.
	FailNext error
}

// NewStringBuffer returns a buffer holding text.
func NewStringBuffer(text string) *StringBuffer {
	return &StringBuffer{text: text}
}

func (b *StringBuffer) Text() string { return b.text }

func (b *StringBuffer) SetText(text string) error {
	if err := b.FailNext; err != nil {
		b.FailNext = nil
		return err
	}
	b.text = text
	b.writes++
	return nil
}

// Writes counts successful SetText calls.
func (b *StringBuffer) Writes() int { return b.writes }

// ReloadSignal asks whoever owns the diagram to rebuild it. The reason is
// informational.
type ReloadSignal interface {
	Signal(reason string) error
}

// ReloadFunc adapts a function to ReloadSignal.
type ReloadFunc func(reason string) error

func (f ReloadFunc) Signal(reason string) error { return f(reason) }

// Signals fans a reload out to several receivers.
type Signals []ReloadSignal

func (s Signals) Signal(reason string) error {
	var errs []error
	for _, r := range s {
		if err := r.Signal(reason); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
