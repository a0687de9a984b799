// Command tmedit is a terminal editor for Turing machine state diagrams.
//
// The diagram is laid out by the force simulation and drawn on a character
// grid. Edits made on the diagram are written straight back to the YAML
// definition file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Bubbleman532/turing-sandbox/pkg/config"
	"github.com/Bubbleman532/turing-sandbox/pkg/diagram"
	"github.com/Bubbleman532/turing-sandbox/pkg/editor"
	"github.com/Bubbleman532/turing-sandbox/pkg/machine"
	"github.com/Bubbleman532/turing-sandbox/pkg/store"
)

const usage = `Usage: tmedit [-c config.hcl] [--log file] <machine.yaml>`

// tickInterval paces the layout animation.
const tickInterval = 30 * time.Millisecond

// doubleClickMs is the longest gap between two releases that still counts
// as a double click.
const doubleClickMs = 400

// MessageType for status messages
type MessageType int

const (
	MsgInfo    MessageType = iota // Informative, no flash
	MsgError                      // Errors, flash
	MsgSuccess                    // State changes, flash
	MsgWarning                    // Warnings, flash
)

// Editor is the terminal host of an editing session.
type Editor struct {
	screen tcell.Screen
	cfg    config.Config
	log    *slog.Logger

	name    string // key of the diagram in the position store
	buf     *fileBuffer
	panel   *termPanel
	session *editor.Session
	reload  *store.MemoryReload
	store   *store.Store
	d       *diagram.Diagram
	def     *machine.Definition

	// Pointer tracking
	leftDown      bool
	pointerInside bool
	pointer       diagram.Vec
	lastClickTime int64
	lastClickX    int
	lastClickY    int
	linkMode      bool // connect modifier latched with 'c'
	focus         editor.Field
	focused       bool
	sidebarWidth  int

	// Status message
	message           string
	messageType       MessageType
	messageFlashStart atomic.Int64

	animating atomic.Bool
}

func main() {
	var cfgPath, logPath, path string
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-c", "--config":
			if i+1 < len(args) {
				cfgPath = args[i+1]
				i++
			}
		case "--log":
			if i+1 < len(args) {
				logPath = args[i+1]
				i++
			}
		case "-h", "--help":
			fmt.Println(usage)
			return
		default:
			path = args[i]
		}
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	if err := run(cfgPath, logPath, path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, logPath, path string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	// the screen owns the terminal, so logs go to a file or nowhere
	var logW io.Writer = io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logW = f
	}

	ed, err := newEditor(cfg, cfg.Logger(logW), path)
	if err != nil {
		return err
	}
	defer ed.store.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.Clear()
	ed.screen = screen

	ed.loop()
	screen.Fini()

	return ed.savePositions()
}

func newEditor(cfg config.Config, log *slog.Logger, path string) (*Editor, error) {
	buf, err := openBuffer(path)
	if err != nil {
		return nil, err
	}
	def, err := machine.Parse(buf.Text())
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, err
	}
	// reload reasons left by earlier sessions
	if n, err := st.Purge(context.Background()); err != nil {
		log.Warn("Failed to purge expired entries", "error", err)
	} else if n > 0 {
		log.Debug("Purged expired entries", "count", n)
	}

	ed := &Editor{
		cfg:          cfg,
		log:          log,
		name:         strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		buf:          buf,
		reload:       store.NewMemoryReload(16),
		store:        st,
		def:          def,
		sidebarWidth: 30,
	}
	ed.panel = newTermPanel(func(msg string) { ed.showMessage(msg, MsgWarning) })

	ed.d = diagram.FromMachine(def, nil, cfg.Diagram)
	table, err := st.LoadPositions(context.Background(), ed.name)
	if err != nil {
		st.Close()
		return nil, err
	}
	if len(table) > 0 {
		ed.d.SetPositions(table)
	}

	signals := editor.Signals{ed.reload, st.Reload(cfg.ReloadTTL)}
	ed.session = editor.NewSession(buf, ed.panel, signals, editor.Options{Logger: log})
	ed.session.Attach(ed.d)
	log.Info("Editing", "path", path, "states", len(def.Table))
	return ed, nil
}

// loop is the single goroutine that touches the diagram and session.
func (ed *Editor) loop() {
	done := make(chan struct{})
	defer close(done)
	go ed.tick(done)

	for {
		ed.draw()
		ed.screen.Show()

		ev := ed.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			ed.screen.Sync()
		case *tcell.EventKey:
			if ed.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			ed.handleMouse(ev)
		case *tcell.EventInterrupt:
			if ed.d.Layout().Running() {
				ed.d.Layout().Tick()
			}
		}
		ed.drainReloads()
		ed.animating.Store(ed.d.Layout().Running())
	}
}

// tick posts an interrupt while the layout is moving or a message is
// flashing, until done is closed.
func (ed *Editor) tick(done <-chan struct{}) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}
		refresh := ed.animating.Load()
		if start := ed.messageFlashStart.Load(); start > 0 {
			elapsed := time.Now().UnixMilli() - start
			if elapsed >= 0 && elapsed < 700 {
				refresh = true
			}
		}
		if refresh {
			ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
		}
	}
}

// drainReloads rebuilds the diagram once for any pending reload requests.
func (ed *Editor) drainReloads() {
	var reasons []string
	for done := false; !done; {
		select {
		case r := <-ed.reload.C:
			reasons = append(reasons, r)
		default:
			done = true
		}
	}
	if len(reasons) > 0 {
		ed.rebuild(strings.Join(reasons, ", "))
	}
}

// rebuild re-parses the buffer and replaces the diagram, carrying node
// positions and the selection over.
func (ed *Editor) rebuild(reason string) {
	def, err := machine.Parse(ed.buf.Text())
	if err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	positions := ed.d.Positions()
	d := diagram.FromMachine(def, nil, ed.cfg.Diagram)
	d.SetPositions(positions)
	ed.session.Attach(d)
	ed.d, ed.def = d, def
	ed.clampFocus()

	ed.log.Debug("Rebuilt diagram", "reason", reason, "nodes", len(d.Nodes), "edges", len(d.Edges))
	if err := ed.savePositions(); err != nil {
		ed.showMessage(err.Error(), MsgError)
	}
}

func (ed *Editor) savePositions() error {
	return ed.store.SavePositions(context.Background(), ed.name, ed.d.Positions())
}

// report shows the outcome of a session operation. Rejected edits have
// already been alerted through the panel.
func (ed *Editor) report(err error) {
	if err == nil {
		return
	}
	var verr *editor.ValidationError
	if errors.As(err, &verr) {
		return
	}
	var perr *machine.ParseError
	if errors.As(err, &perr) {
		ed.showMessage("Fix the definition first: "+perr.Error(), MsgError)
		return
	}
	ed.log.Error("Edit failed", "error", err)
	ed.showMessage(err.Error(), MsgError)
}

func (ed *Editor) showMessage(msg string, t MessageType) {
	ed.message = msg
	ed.messageType = t
	ed.messageFlashStart.Store(time.Now().UnixMilli())
}

func (ed *Editor) clearMessage() {
	ed.message = ""
	ed.messageFlashStart.Store(0)
}

// flashes reports whether messages of type t blink when shown.
func flashes(t MessageType) bool {
	switch t {
	case MsgError, MsgSuccess, MsgWarning:
		return true
	}
	return false
}

// flashInverted gives the blink phase: normal, inverted, normal, inverted,
// 125ms each, then steady.
func flashInverted(elapsed int64) bool {
	if elapsed < 0 || elapsed >= 500 {
		return false
	}
	phaseNum := elapsed / 125
	return phaseNum == 1 || phaseNum == 3
}
