// Command csg evaluates a modelling script and writes the resulting part
// meshes as JSON or Wavefront OBJ.
//
// Usage:
//
//	csg [flags] [script]
//
// The script is read from standard input when no path (or "-") is given.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/chazu/csg/pkg/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// errScript reports that the script itself failed; details were already
// printed to stderr.
var errScript = errors.New("script failed")

type options struct {
	configPath string
	output     string
	format     string
	timeout    time.Duration
	verbose    bool
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "csg [script]",
		Short:         "Evaluate a CSG modelling script and export its meshes",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			err := run(opts, path, stdin, stdout, stderr, cmd.Flags().Changed)
			if err != nil && !errors.Is(err, errScript) {
				fmt.Fprintf(stderr, "csg: %v\n", err)
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "TOML config file")
	f.StringVarP(&opts.output, "output", "o", "-", "output file (- for stdout)")
	f.StringVarP(&opts.format, "format", "f", "", "output format: json or obj (overrides config)")
	f.DurationVar(&opts.timeout, "timeout", 0, "evaluation timeout (overrides config)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	return cmd
}

// loadConfig resolves the config file and applies flag overrides.
func loadConfig(opts options, changed func(string) bool) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}
	if changed("format") {
		cfg.Output.Format = opts.format
	}
	if changed("timeout") {
		cfg.Timeout.Duration = opts.timeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "flags")
	}
	return cfg, nil
}

func run(opts options, path string, stdin io.Reader, stdout, stderr io.Writer, changed func(string) bool) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(opts, changed)
	if err != nil {
		return err
	}

	source, err := readSource(path, stdin)
	if err != nil {
		return err
	}

	logger.Debug("evaluating", "script", path, "bytes", len(source), "timeout", cfg.Timeout.Duration)
	result := NewApp(cfg, logger).Evaluate(string(source))
	for _, w := range result.Warnings {
		logger.Warn(w.Message)
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			if e.Line > 0 {
				fmt.Fprintf(stderr, "%s:%d: %s\n", path, e.Line, e.Message)
			} else {
				fmt.Fprintf(stderr, "%s: %s\n", path, e.Message)
			}
		}
		return errScript
	}

	out := stdout
	if opts.output != "-" {
		file, err := os.Create(opts.output)
		if err != nil {
			return errors.Wrap(err, "creating output")
		}
		defer file.Close()
		out = file
	}

	switch cfg.Output.Format {
	case config.FormatOBJ:
		err = writeOBJ(out, result.Meshes)
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		err = enc.Encode(result)
	}
	if err != nil {
		return errors.Wrapf(err, "writing %s", cfg.Output.Format)
	}
	logger.Info("wrote meshes", "parts", len(result.Meshes), "format", cfg.Output.Format, "output", opts.output)
	return nil
}

func readSource(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		return b, errors.Wrap(err, "reading stdin")
	}
	b, err := os.ReadFile(path)
	return b, errors.Wrapf(err, "reading script %s", path)
}
