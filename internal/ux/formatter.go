package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Formatter defines the interface for output formatters.
// This enables consistent output formatting across all commands.
type Formatter interface {
	// Format writes the given data to the output writer
	Format(data interface{}) error
}

// Field is one labeled line of text output.
type Field struct {
	Label string
	Value string
	// Style picks the value style: "" for the default, or "success",
	// "warning", "error", "muted".
	Style string
}

// Fielder is implemented by views that render as a labeled list in text mode.
type Fielder interface {
	Title() string
	Fields() []Field
}

// FormatterOptions contains configuration for formatters
type FormatterOptions struct {
	// Writer is where output is written (defaults to os.Stdout)
	Writer io.Writer
	// NoColor disables colored output for text formatters
	NoColor bool
	// Compact enables compact output (no indentation for JSON/YAML)
	Compact bool
}

// NewFormatter creates a formatter based on the format string
func NewFormatter(format string, opts *FormatterOptions) (Formatter, error) {
	if opts == nil {
		opts = &FormatterOptions{Writer: os.Stdout}
	}
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	switch format {
	case "json":
		return &JSONFormatter{opts: opts}, nil
	case "yaml":
		return &YAMLFormatter{opts: opts}, nil
	case "text", "":
		styles := DefaultStyles()
		if opts.NoColor {
			styles = PlainStyles()
		}
		return &TextFormatter{opts: opts, styles: styles}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: text, json, yaml)", format)
	}
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	opts *FormatterOptions
}

// Format writes data as JSON
func (f *JSONFormatter) Format(data interface{}) error {
	encoder := json.NewEncoder(f.opts.Writer)
	if !f.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	opts *FormatterOptions
}

// Format writes data as YAML
func (f *YAMLFormatter) Format(data interface{}) error {
	encoder := yaml.NewEncoder(f.opts.Writer)
	if !f.opts.Compact {
		encoder.SetIndent(2)
	}
	defer encoder.Close()
	return encoder.Encode(data)
}

// TextFormatter formats output as human-readable text
type TextFormatter struct {
	opts   *FormatterOptions
	styles Styles
}

// Format writes data as formatted text. Data must be a string, a Fielder
// or a fmt.Stringer.
func (f *TextFormatter) Format(data interface{}) error {
	switch v := data.(type) {
	case string:
		_, err := fmt.Fprintln(f.opts.Writer, v)
		return err
	case Fielder:
		_, err := io.WriteString(f.opts.Writer, f.renderFields(v))
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(f.opts.Writer, v.String())
		return err
	default:
		return fmt.Errorf("text formatter requires data to implement String() method or be a primitive type")
	}
}

func (f *TextFormatter) renderFields(v Fielder) string {
	var b strings.Builder
	if title := v.Title(); title != "" {
		b.WriteString(f.styles.Title.Render(title))
		b.WriteString("\n")
	}

	fields := v.Fields()
	width := 0
	for _, field := range fields {
		if len(field.Label) > width {
			width = len(field.Label)
		}
	}
	for _, field := range fields {
		label := fmt.Sprintf("%-*s", width+1, field.Label+":")
		b.WriteString("  ")
		b.WriteString(f.styles.Label.Render(label))
		b.WriteString(" ")
		b.WriteString(f.valueStyle(field.Style).Render(field.Value))
		b.WriteString("\n")
	}
	return b.String()
}

func (f *TextFormatter) valueStyle(name string) lipgloss.Style {
	switch name {
	case "success":
		return f.styles.Success
	case "warning":
		return f.styles.Warning
	case "error":
		return f.styles.Error
	case "muted":
		return f.styles.Muted
	default:
		return f.styles.Value
	}
}

// Compile-time verification that formatters implement Formatter
var _ Formatter = (*JSONFormatter)(nil)
var _ Formatter = (*YAMLFormatter)(nil)
var _ Formatter = (*TextFormatter)(nil)
