package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/ardnew/bindexpr/lang"
)

// Fmt parses an expression and prints it in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Print canonical source (default)."`
	AST    AST    `cmd:""                    help:"Print an indented syntax tree."`
	JSON   JSON   `cmd:""                    help:"Print the syntax tree as JSON."`
	YAML   YAML   `cmd:""                    help:"Print the syntax tree as YAML."`
	Source Source `cmd:""                    help:"Print the text generated for the source backend."`
}

// Input is the expression argument shared by the fmt subcommands.
type Input struct {
	Expr string `arg:"" default:"-" help:"Expression, or '-' to read it from stdin." name:"expr"`
}

func (a Input) parse(ctx context.Context) (*lang.Program, error) {
	text, err := readText(ctx, a.Expr)
	if err != nil {
		return nil, err
	}

	return lang.BuildAST(text)
}

// Native prints canonical source.
type Native struct {
	Input `embed:""`
}

// Run executes the native command.
func (n *Native) Run(ctx context.Context) error { return n.run(ctx, stdout(ctx)) }

func (n *Native) run(ctx context.Context, w io.Writer) error {
	prog, err := n.parse(ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, lang.Format(prog))

	return err
}

// AST prints an indented outline of the syntax tree.
type AST struct {
	Input `embed:""`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) error { return a.run(ctx, stdout(ctx)) }

func (a *AST) run(ctx context.Context, w io.Writer) error {
	prog, err := a.parse(ctx)
	if err != nil {
		return err
	}

	return lang.Print(w, prog)
}

// JSON prints the syntax tree as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Input `embed:""`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) error { return j.run(ctx, stdout(ctx)) }

func (j *JSON) run(ctx context.Context, w io.Writer) error {
	prog, err := j.parse(ctx)
	if err != nil {
		return err
	}

	return lang.FormatJSON(ctx, w, prog, j.Indent)
}

// YAML prints the syntax tree as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output; 0 selects flow style" short:"i"`

	Input `embed:""`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) error { return y.run(ctx, stdout(ctx)) }

func (y *YAML) run(ctx context.Context, w io.Writer) error {
	prog, err := y.parse(ctx)
	if err != nil {
		return err
	}

	return lang.FormatYAML(ctx, w, prog, y.Indent)
}

// Source prints the text the source backend hands to its materializer.
type Source struct {
	Input `embed:""`
}

// Run executes the source command.
func (s *Source) Run(ctx context.Context) error { return s.run(ctx, stdout(ctx)) }

func (s *Source) run(ctx context.Context, w io.Writer) error {
	prog, err := s.parse(ctx)
	if err != nil {
		return err
	}

	text, err := lang.Generate(prog)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, text)

	return err
}
