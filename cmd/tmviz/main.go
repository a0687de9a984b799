// Command tmviz lays out Turing machine definitions as state diagrams and
// renders them.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Bubbleman532/turing-sandbox/pkg/config"
	"github.com/Bubbleman532/turing-sandbox/pkg/diagram"
	"github.com/Bubbleman532/turing-sandbox/pkg/machine"
	"github.com/Bubbleman532/turing-sandbox/pkg/render"
	"github.com/Bubbleman532/turing-sandbox/pkg/store"
)

const usage = `tmviz - Turing machine state diagrams

Usage:
  tmviz <command> [options]

Commands:
  render     Lay out a machine and write SVG, PNG, DOT or JSON
  info       Show machine information
  validate   Validate a machine definition
  run        Run a machine on its tape
  positions  Manage saved node positions

Global options (after the command):
  -c, --config <file>   HCL config file (default $TMVIZ_CONFIG)

Examples:
  tmviz render add.yaml -o add.svg
  tmviz render add.yaml -o add.png --scale 2
  tmviz render add.yaml -f dot | neato -n -Tpng -o add.png
  tmviz run add.yaml --input 1011 -v
  tmviz positions save add.yaml
  tmviz positions dump add > add.pos.yaml

Use "tmviz <command> -h" for more information about a command.
`

// maxSettleTicks bounds the layout when no saved positions exist.
const maxSettleTicks = 1000

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "render":
		err = cmdRender(args)
	case "info":
		err = cmdInfo(args)
	case "validate":
		err = cmdValidate(args)
	case "run":
		err = cmdRun(args)
	case "positions":
		err = cmdPositions(args)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env is the state shared by commands.
type env struct {
	cfg config.Config
	log *slog.Logger
}

// splitConfig pulls the config flag out of args and loads it.
func splitConfig(args []string) (*env, []string, error) {
	var path string
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-c", "--config":
			if i+1 < len(args) {
				path = args[i+1]
				i++
			}
		default:
			rest = append(rest, args[i])
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return &env{cfg: cfg, log: cfg.Logger(os.Stderr)}, rest, nil
}

func cmdRender(args []string) error {
	e, args, err := splitConfig(args)
	if err != nil {
		return err
	}
	if len(args) < 1 || args[0] == "-h" {
		fmt.Fprintln(os.Stderr, "Usage: tmviz render <machine.yaml> [-o output] [-f svg|png|dot|json] [-t title] [--scale n] [--fresh]")
		os.Exit(1)
	}

	input := args[0]
	var output, format, title string
	scale := 1.0
	fresh := false

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		case "-f", "--format":
			if i+1 < len(args) {
				format = args[i+1]
				i++
			}
		case "-t", "--title":
			if i+1 < len(args) {
				title = args[i+1]
				i++
			}
		case "--scale":
			if i+1 < len(args) {
				if _, err := fmt.Sscanf(args[i+1], "%g", &scale); err != nil {
					return fmt.Errorf("invalid scale %q", args[i+1])
				}
				i++
			}
		case "--fresh":
			fresh = true
		}
	}

	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(output), ".")
		if format == "" {
			format = "svg"
		}
	}
	if title == "" {
		title = diagramName(input)
	}

	def, err := loadMachine(input)
	if err != nil {
		return err
	}
	d := diagram.FromMachine(def, nil, e.cfg.Diagram)
	if !fresh {
		if err := e.restorePositions(d, diagramName(input)); err != nil {
			return err
		}
	}
	ticks := d.Layout().Settle(maxSettleTicks)
	e.log.Debug("Layout settled", "ticks", ticks, "alpha", d.Layout().Alpha())

	var out io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "svg":
		_, err = io.WriteString(out, render.GenerateSVG(d, def.StartState, render.SVGOptions{Title: title}))
	case "dot":
		_, err = io.WriteString(out, render.GenerateDOT(d, def.StartState, title))
	case "png":
		err = render.RenderPNG(d, out, render.PNGOptions{Scale: scale, Start: def.StartState})
	case "json":
		err = render.GenerateJSON(d, out, def.StartState)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", format, err)
	}
	if output != "" {
		fmt.Fprintf(os.Stderr, "Written: %s\n", output)
	}
	return nil
}

// restorePositions applies saved positions when the store has any. A
// missing database is not an error.
func (e *env) restorePositions(d *diagram.Diagram, name string) error {
	if _, err := os.Stat(e.cfg.StorePath); os.IsNotExist(err) {
		return nil
	}
	s, err := store.Open(e.cfg.StorePath)
	if err != nil {
		return err
	}
	defer s.Close()

	table, err := s.LoadPositions(context.Background(), name)
	if err != nil {
		return err
	}
	if len(table) > 0 {
		e.log.Debug("Restoring positions", "diagram", name, "nodes", len(table))
		d.SetPositions(table)
	}
	return nil
}

func cmdInfo(args []string) error {
	_, args, err := splitConfig(args)
	if err != nil {
		return err
	}
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: tmviz info <machine.yaml>")
		os.Exit(1)
	}

	def, err := loadMachine(args[0])
	if err != nil {
		return err
	}

	transitions := 0
	for _, s := range def.Table {
		transitions += len(s.Transitions)
	}
	edges := def.Edges()

	fmt.Printf("Start:       %s\n", def.StartState)
	fmt.Printf("Input:       %q\n", def.Input)
	fmt.Printf("Blank:       %q\n", def.Blank)
	fmt.Printf("States:      %d\n", len(def.Table))
	fmt.Printf("Transitions: %d\n", transitions)
	fmt.Printf("Edges:       %d\n", len(edges))
	fmt.Println()
	fmt.Printf("States:      %v\n", def.StateNames())
	for _, e := range edges {
		fmt.Printf("  %s -> %s: %s\n", e.From, e.To, strings.Join(e.Labels, "; "))
	}
	return nil
}

func cmdValidate(args []string) error {
	_, args, err := splitConfig(args)
	if err != nil {
		return err
	}
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: tmviz validate <machine.yaml>")
		os.Exit(1)
	}

	input := args[0]
	def, err := loadMachine(input)
	if err != nil {
		return err
	}
	if err := def.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("%s: valid machine with %d states, %d edges\n",
		input, len(def.Table), len(def.Edges()))
	return nil
}

// defaultMaxSteps bounds a run that never halts.
const defaultMaxSteps = 10000

func cmdRun(args []string) error {
	e, args, err := splitConfig(args)
	if err != nil {
		return err
	}
	if len(args) < 1 || args[0] == "-h" {
		fmt.Fprintln(os.Stderr, "Usage: tmviz run <machine.yaml> [--input tape] [--steps n] [-v]")
		os.Exit(1)
	}

	def, err := loadMachine(args[0])
	if err != nil {
		return err
	}
	input := def.Input
	maxSteps := defaultMaxSteps
	verbose := false

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--input":
			if i+1 < len(args) {
				input = args[i+1]
				i++
			}
		case "--steps":
			if i+1 < len(args) {
				if _, err := fmt.Sscanf(args[i+1], "%d", &maxSteps); err != nil || maxSteps <= 0 {
					return fmt.Errorf("invalid step count: %s", args[i+1])
				}
				i++
			}
		case "-v", "--verbose":
			verbose = true
		}
	}

	r, err := machine.NewRunnerInput(def, input)
	if err != nil {
		return err
	}
	e.log.Debug("Running", "start", def.StartState, "input", input, "max_steps", maxSteps)

	if verbose {
		fmt.Println(r.Status())
		for !r.Halted() && r.Steps() < maxSteps {
			ok, err := r.Step()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			last := r.History()[r.Steps()-1]
			fmt.Printf("  %d: %s --%q→%q,%s--> %s\n", r.Steps(), last.From, last.Read, last.Write, last.Move, last.To)
			fmt.Println(r.Status())
		}
		// a zero-step run halts the machine or reports the limit
		if err := r.Run(0); err != nil {
			return err
		}
	} else if err := r.Run(maxSteps); err != nil {
		return err
	}

	fmt.Printf("Halted in %s after %d steps\n", r.State(), r.Steps())
	fmt.Printf("Tape: %q\n", r.Tape().Contents())
	return nil
}

const positionsUsage = `Usage:
  tmviz positions save <machine.yaml> [--fresh]   lay out and store positions
  tmviz positions dump <name>                     print positions as YAML
  tmviz positions load <name> <file.yaml>         store positions from YAML
  tmviz positions list                            list stored diagrams
  tmviz positions delete <name>                   forget a diagram`

func cmdPositions(args []string) error {
	e, args, err := splitConfig(args)
	if err != nil {
		return err
	}
	if len(args) < 1 || args[0] == "-h" {
		fmt.Fprintln(os.Stderr, positionsUsage)
		os.Exit(1)
	}

	s, err := store.Open(e.cfg.StorePath)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := context.Background()

	need := func(n int) {
		if len(args) < n {
			fmt.Fprintln(os.Stderr, positionsUsage)
			os.Exit(1)
		}
	}

	switch args[0] {
	case "save":
		need(2)
		def, err := loadMachine(args[1])
		if err != nil {
			return err
		}
		name := diagramName(args[1])
		d := diagram.FromMachine(def, nil, e.cfg.Diagram)
		if len(args) < 3 || args[2] != "--fresh" {
			table, err := s.LoadPositions(ctx, name)
			if err != nil {
				return err
			}
			d.SetPositions(table)
		}
		d.Layout().Settle(maxSettleTicks)
		if err := s.SavePositions(ctx, name, d.Positions()); err != nil {
			return err
		}
		e.log.Info("Saved positions", "diagram", name, "nodes", len(d.Nodes))
	case "dump":
		need(2)
		table, err := s.LoadPositions(ctx, args[1])
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(table); err != nil {
			return fmt.Errorf("failed to encode positions: %w", err)
		}
		return enc.Close()
	case "load":
		need(3)
		data, err := os.ReadFile(args[2])
		if err != nil {
			return err
		}
		var table diagram.PositionTable
		if err := yaml.Unmarshal(data, &table); err != nil {
			return fmt.Errorf("failed to parse %s: %w", args[2], err)
		}
		if err := s.SavePositions(ctx, args[1], table); err != nil {
			return err
		}
		e.log.Info("Loaded positions", "diagram", args[1], "nodes", len(table))
	case "list":
		names, err := s.Diagrams(ctx)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
	case "delete":
		need(2)
		return s.DeletePositions(ctx, args[1])
	default:
		fmt.Fprintln(os.Stderr, positionsUsage)
		os.Exit(1)
	}
	return nil
}

// diagramName keys a machine file in the position store.
func diagramName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func loadMachine(path string) (*machine.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	def, err := machine.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}
