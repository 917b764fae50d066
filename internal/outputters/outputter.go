// Package outputters picks the formatter for the configured output format.
package outputters

import (
	"fmt"
	"io"

	"github.com/dotcommander/moyenne/internal/config"
	"github.com/dotcommander/moyenne/internal/output"
)

// Formatter renders one report.
type Formatter = output.Formatter

// FormatterFactory builds the formatter for a format name.
type FormatterFactory interface {
	CreateFormatter(format string) (Formatter, error)
}

// DefaultFormatterFactory builds the output package formatters from config.
type DefaultFormatterFactory struct {
	cfg *config.Config
}

// NewDefaultFormatterFactory creates a new DefaultFormatterFactory
func NewDefaultFormatterFactory(cfg *config.Config) *DefaultFormatterFactory {
	return &DefaultFormatterFactory{cfg: cfg}
}

// Options maps the configuration onto formatter options.
func Options(cfg *config.Config) output.Options {
	return output.Options{
		Quiet:         cfg.Quiet,
		Verbose:       cfg.Verbose,
		Decimals:      cfg.Decimals,
		NoCelebration: cfg.NoCelebration,
		OutputFile:    cfg.Output,
	}
}

// CreateFormatter returns the formatter for format.
func (f *DefaultFormatterFactory) CreateFormatter(format string) (Formatter, error) {
	opts := Options(f.cfg)
	switch format {
	case "console":
		return output.NewConsoleFormatter(opts), nil
	case "json":
		return output.NewJSONFormatter(true, opts.OutputFile), nil
	case "markdown":
		return output.NewMarkdownFormatter(opts), nil
	case "html":
		return output.NewHTMLFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Outputter handles output formatting
type Outputter struct {
	config  *config.Config
	factory FormatterFactory
}

// NewOutputter creates a new Outputter
func NewOutputter(config *config.Config) *Outputter {
	return NewOutputterWithFactory(config, NewDefaultFormatterFactory(config))
}

// NewOutputterWithFactory creates an Outputter with a custom factory.
func NewOutputterWithFactory(config *config.Config, factory FormatterFactory) *Outputter {
	return &Outputter{config: config, factory: factory}
}

// Format renders report to w using format. A passing final result shown on
// the console is followed by the celebration animation.
func (o *Outputter) Format(w io.Writer, report output.Report, format string) error {
	formatter, err := o.factory.CreateFormatter(format)
	if err != nil {
		return err
	}
	if err := formatter.Format(w, report); err != nil {
		return err
	}
	if format == "console" && output.ShouldCelebrate(report, Options(o.config)) {
		output.Celebrate(w, "Semestre validé")
	}
	return nil
}
