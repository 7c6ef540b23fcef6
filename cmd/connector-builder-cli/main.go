package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	connectorbuilder "github.com/goliatone/go-connector-builder"
	logpkg "github.com/goliatone/go-connector-builder/internal/log"
	"github.com/goliatone/go-connector-builder/pkg/builder"
	"github.com/goliatone/go-connector-builder/pkg/convert"
	"github.com/goliatone/go-connector-builder/pkg/manifest"
	"github.com/goliatone/go-connector-builder/pkg/validation"
)

const (
	directionToManifest = "to-manifest"
	directionToForm     = "to-form"
	directionValidate   = "validate"
	directionCheck      = "check"
)

// errInvalid marks a run that completed but found problems; main exits with 1
// without printing it again.
var errInvalid = errors.New("input is invalid")

type options struct {
	direction     string
	input         string
	output        string
	format        string
	connectorName string
	values        string
	prompt        bool
	strict        bool
	logLevel      string
	logFormat     string
}

func main() {
	err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, surveyPrompter{})
	switch {
	case err == nil:
	case errors.Is(err, errInvalid):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "connector-builder: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("connector-builder-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.direction, "direction", directionToManifest, "to-manifest, to-form, validate or check")
	fs.StringVar(&opts.input, "input", "", "form values JSON (to-manifest, validate) or manifest path or URL (to-form, check)")
	fs.StringVar(&opts.output, "output", "", "output file (stdout if empty)")
	fs.StringVar(&opts.format, "format", "", "manifest format for to-manifest: json or yaml (default from -output extension, else yaml)")
	fs.StringVar(&opts.connectorName, "connector-name", "", "connector name for to-form")
	fs.StringVar(&opts.values, "values", "", "testing values JSON for check")
	fs.BoolVar(&opts.prompt, "prompt", false, "ask for missing values interactively")
	fs.BoolVar(&opts.strict, "strict", false, "refuse to convert forms that fail validation")
	fs.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&opts.logFormat, "log-format", "", "text or json")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if strings.TrimSpace(opts.input) == "" {
		return options{}, errors.New("-input is required")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, prompter Prompter) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg := logpkg.FromEnv(logpkg.DefaultConfig())
	cfg.Output = stderr
	if opts.logLevel != "" {
		cfg.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Format = logpkg.Format(opts.logFormat)
	}
	logger, err := logpkg.New(cfg)
	if err != nil {
		return err
	}

	var payload []byte
	switch opts.direction {
	case directionToManifest:
		payload, err = formToManifest(ctx, opts, logger, prompter)
	case directionToForm:
		payload, err = manifestToForm(ctx, opts, logger, prompter)
	case directionValidate:
		payload, err = validateForm(opts, logger)
	case directionCheck:
		payload, err = checkValues(ctx, opts, logger)
	default:
		return fmt.Errorf("unknown direction %q", opts.direction)
	}
	if payload != nil {
		if writeErr := writeOutput(opts.output, payload, stdout); writeErr != nil {
			return writeErr
		}
		if opts.output != "" {
			fmt.Fprintf(stderr, "written to %s\n", opts.output)
		}
	}
	return err
}

func formToManifest(ctx context.Context, opts options, logger *slog.Logger, prompter Prompter) ([]byte, error) {
	values, err := readForm(opts.input)
	if err != nil {
		return nil, err
	}
	format, err := outputFormat(opts)
	if err != nil {
		return nil, err
	}

	// Issues are reported, not fatal, unless -strict is set.
	if result := validation.ValidateForm(values); !result.Valid {
		logIssues(logger, result)
		if opts.strict {
			proceed := false
			if opts.prompt {
				if proceed, err = prompter.Confirm(ctx, fmt.Sprintf("Form has %d issue(s). Convert anyway?", len(result.Issues))); err != nil {
					return nil, err
				}
			}
			if !proceed {
				return nil, fmt.Errorf("form has %d validation issue(s)", len(result.Issues))
			}
		}
	}

	m := convert.New(convert.WithLogger(logger)).ToManifest(values)
	return manifest.Encode(m, format)
}

func manifestToForm(ctx context.Context, opts options, logger *slog.Logger, prompter Prompter) ([]byte, error) {
	m, err := loadManifest(ctx, opts.input)
	if err != nil {
		return nil, err
	}

	current := builder.DefaultFormValues()
	current.Global.ConnectorName = opts.connectorName
	if current.Global.ConnectorName == "" && opts.prompt {
		suggestion := strings.TrimSuffix(filepath.Base(opts.input), filepath.Ext(opts.input))
		if current.Global.ConnectorName, err = prompter.ConnectorName(ctx, suggestion); err != nil {
			return nil, err
		}
	}

	values, err := convert.New(convert.WithLogger(logger)).ToBuilderFormValues(m, current)
	if err != nil {
		if compat, ok := convert.AsManifestCompatibilityError(err); ok {
			logger.Warn("manifest cannot be represented as form values",
				slog.String(logpkg.StreamKey, compat.StreamName),
				slog.String(logpkg.ReasonKey, compat.Message),
			)
		}
		return nil, err
	}
	return json.MarshalIndent(values, "", "  ")
}

func validateForm(opts options, logger *slog.Logger) ([]byte, error) {
	values, err := readForm(opts.input)
	if err != nil {
		return nil, err
	}
	result := validation.ValidateForm(values)
	return reportResult(result, logger)
}

func checkValues(ctx context.Context, opts options, logger *slog.Logger) ([]byte, error) {
	if opts.values == "" {
		return nil, errors.New("-values is required for check")
	}
	m, err := loadManifest(ctx, opts.input)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(opts.values)
	if err != nil {
		return nil, fmt.Errorf("read testing values: %w", err)
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode testing values: %w", err)
	}
	return reportResult(connectorbuilder.CheckTestingValues(ctx, m, values), logger)
}

func reportResult(result validation.Result, logger *slog.Logger) ([]byte, error) {
	logIssues(logger, result)
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return payload, errInvalid
	}
	return payload, nil
}

func logIssues(logger *slog.Logger, result validation.Result) {
	for _, issue := range result.Issues {
		logger.Warn("validation issue",
			slog.String("path", issue.Path),
			slog.String("code", issue.Code),
			slog.String(logpkg.ReasonKey, issue.Message),
		)
	}
}

func readForm(path string) (builder.BuilderFormValues, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return builder.BuilderFormValues{}, fmt.Errorf("read form values: %w", err)
	}
	return builder.Decode(raw)
}

func loadManifest(ctx context.Context, raw string) (manifest.Manifest, error) {
	src, err := parseSource(raw)
	if err != nil {
		return manifest.Manifest{}, err
	}
	return connectorbuilder.LoadManifest(ctx, src, manifest.WithHTTPFallback(30*time.Second))
}

func parseSource(raw string) (manifest.Source, error) {
	path := strings.TrimSpace(raw)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return manifest.SourceFromURL(path)
	}
	return manifest.SourceFromFile(path), nil
}

func outputFormat(opts options) (manifest.Format, error) {
	if opts.format != "" {
		return manifest.ParseFormat(opts.format)
	}
	if ext := filepath.Ext(opts.output); ext != "" {
		if format, err := manifest.ParseFormat(ext); err == nil {
			return format, nil
		}
	}
	return manifest.FormatYAML, nil
}

func writeOutput(path string, payload []byte, stdout io.Writer) error {
	if !strings.HasSuffix(string(payload), "\n") {
		payload = append(payload, '\n')
	}
	if path == "" {
		_, err := stdout.Write(payload)
		return err
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
