// Package repl parses lines typed at an interactive prompt with one grammar.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/peterh/liner"

	"github.com/dhamidi/peg/format"
	"github.com/dhamidi/peg/grammar"
	"github.com/dhamidi/peg/parse"
)

// REPL holds the state of an interactive session.
type REPL struct {
	grammar      *grammar.Grammar
	start        string
	output       io.Writer
	outputFormat string
	historyPath  string
	requireEOF   bool
	stats        bool
	lineNo       int
}

type stop struct{}

func (stop) Error() string {
	return "<stop>"
}

// New returns a REPL for g writing results to output in outputFormat.
func New(g *grammar.Grammar, historyPath string, output io.Writer, outputFormat string) *REPL {
	return &REPL{
		grammar:      g,
		start:        g.Start(),
		output:       output,
		outputFormat: outputFormat,
		historyPath:  historyPath,
		requireEOF:   true,
	}
}

// Loop runs until the user enters ":quit", Ctrl+C, Ctrl+D, or an unexpected
// error occurs.
func (r *REPL) Loop() error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(r.complete)
	r.loadHistory(line)
	defer r.saveHistory(line)

	fmt.Fprintf(r.output, "%d rules, start rule %s. Type :help for commands.\n", r.grammar.Len(), r.start)

	for {
		input, err := line.Prompt(r.start + "> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		err = r.OneShot(input)
		var s stop
		if errors.As(err, &s) {
			return nil
		}
		if err != nil {
			format.WriteError(r.output, err)
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
	}
}

// OneShot evaluates one line: either a command starting with ':' or input
// for the current start rule. Errors are returned for the caller to display.
func (r *REPL) OneShot(line string) error {
	if cmd, args, ok := command(line); ok {
		switch cmd {
		case "rule":
			return r.cmdRule(args)
		case "rules":
			return r.cmdRules()
		case "format":
			return r.cmdFormat(args)
		case "eof":
			r.requireEOF = !r.requireEOF
			fmt.Fprintf(r.output, "require end of input: %t\n", r.requireEOF)
			return nil
		case "stats":
			r.stats = !r.stats
			fmt.Fprintf(r.output, "stats: %t\n", r.stats)
			return nil
		case "help":
			return r.cmdHelp()
		case "quit", "exit":
			return stop{}
		}
		return fmt.Errorf("unknown command :%s", cmd)
	}
	return r.eval(line)
}

func command(line string) (string, []string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ":") {
		return "", nil, false
	}
	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return "", nil, false
	}
	return fields[0], fields[1:], true
}

func (r *REPL) eval(line string) error {
	r.lineNo++
	opts := []parse.Option{
		parse.WithStart(r.start),
		parse.WithFilename(fmt.Sprintf("<input %d>", r.lineNo)),
	}
	if r.requireEOF {
		opts = append(opts, parse.RequireEOF())
	}
	var stats parse.Stats
	if r.stats {
		opts = append(opts, parse.WithStats(&stats))
	}

	tree, err := parse.Parse(r.grammar, []byte(line), opts...)
	if err != nil {
		return err
	}
	enc, err := format.New(r.outputFormat, r.output)
	if err != nil {
		return err
	}
	if err := enc.Encode(tree); err != nil {
		return err
	}
	if r.stats {
		format.WriteStats(r.output, &stats, 10)
	}
	return nil
}

func (r *REPL) cmdRule(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: :rule <name>")
	}
	if _, err := r.grammar.WithStart(args[0]); err != nil {
		return err
	}
	r.start = args[0]
	return nil
}

func (r *REPL) cmdRules() error {
	table := tablewriter.NewWriter(r.output)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Rule", "Definition"})
	for _, name := range r.grammar.Names() {
		table.Append([]string{name, r.grammar.Rule(name).Expr.String()})
	}
	table.Render()
	return nil
}

func (r *REPL) cmdFormat(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: :format <%s>", strings.Join(format.Names, "|"))
	}
	if _, err := format.New(args[0], io.Discard); err != nil {
		return err
	}
	r.outputFormat = args[0]
	return nil
}

func (r *REPL) cmdHelp() error {
	fmt.Fprintln(r.output, `Commands:
  :rule <name>     parse input starting at rule <name>
  :rules           list the rules of the grammar
  :format <name>   print trees as `+strings.Join(format.Names, ", ")+`
  :eof             toggle requiring the whole line to match
  :stats           toggle printing memo statistics
  :quit            leave
Any other line is parsed with the current start rule.`)
	return nil
}

func (r *REPL) complete(line string) []string {
	var candidates []string
	switch {
	case strings.HasPrefix(line, ":rule "):
		prefix := strings.TrimPrefix(line, ":rule ")
		for _, name := range r.grammar.Names() {
			if strings.HasPrefix(name, prefix) {
				candidates = append(candidates, ":rule "+name)
			}
		}
	case strings.HasPrefix(line, ":format "):
		prefix := strings.TrimPrefix(line, ":format ")
		for _, name := range format.Names {
			if strings.HasPrefix(name, prefix) {
				candidates = append(candidates, ":format "+name)
			}
		}
	case strings.HasPrefix(line, ":"):
		for _, cmd := range []string{":rule", ":rules", ":format", ":eof", ":stats", ":help", ":quit"} {
			if strings.HasPrefix(cmd, line) {
				candidates = append(candidates, cmd)
			}
		}
	}
	sort.Strings(candidates)
	return candidates
}

func (r *REPL) loadHistory(prompt *liner.State) {
	if r.historyPath == "" {
		return
	}
	if f, err := os.Open(r.historyPath); err == nil {
		prompt.ReadHistory(f)
		f.Close()
	}
}

func (r *REPL) saveHistory(prompt *liner.State) {
	if r.historyPath == "" {
		return
	}
	if f, err := os.Create(r.historyPath); err == nil {
		prompt.WriteHistory(f)
		f.Close()
	}
}
