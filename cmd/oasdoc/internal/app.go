// Package internal contains the oasdoc command tree.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reoring/oasdoc/generator"
	"github.com/reoring/oasdoc/internal/config"
	"github.com/reoring/oasdoc/oas"
)

// DefaultConfigFile is read when --config is not given and the file exists.
const DefaultConfigFile = "oasdoc.yaml"

// Run executes the command line args. environ replaces the process
// environment when non-nil.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, environ map[string]string) error {
	root := NewRootCmd(environ)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

type options struct {
	environ map[string]string

	configFile string
	title      string
	version    string
	baseDir    string
	base       string
	files      []string
	models     []string
	servers    []string
	output     string
	format     string
	verbose    bool
	strict     bool
}

// NewRootCmd builds the command tree.
func NewRootCmd(environ map[string]string) *cobra.Command {
	opts := &options{environ: environ}
	root := &cobra.Command{
		Use:           "oasdoc",
		Short:         "Generate OpenAPI documents from source annotations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML config file (default ./"+DefaultConfigFile+" when present)")
	root.PersistentFlags().StringVar(&opts.title, "title", "", "info.title of the document")
	root.PersistentFlags().StringVar(&opts.version, "api-version", "", "info.version of the document")
	root.PersistentFlags().StringVar(&opts.baseDir, "base-dir", "", "directory that file and model paths are relative to")
	root.PersistentFlags().StringVar(&opts.base, "base", "", "base OpenAPI document to merge the generated paths into")
	root.PersistentFlags().StringSliceVar(&opts.files, "files", nil, "glob patterns of annotated files (** supported)")
	root.PersistentFlags().StringSliceVar(&opts.models, "models", nil, "model definition files (YAML or JSON)")
	root.PersistentFlags().StringSliceVar(&opts.servers, "server", nil, "server URL (repeatable)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logs")

	root.AddCommand(newGenerateCmd(opts), newCheckCmd(opts))
	return root
}

func newGenerateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the OpenAPI document",
		Example: `  oasdoc generate --title Users --api-version 1.0.0 --files 'routes/**/*.js' -o openapi.yaml
  oasdoc generate -c oasdoc.yaml --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: json or yaml (default from the output extension)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when any annotation was skipped")
	return cmd
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report annotations that cannot be compiled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, _ := loggers(cmd, opts)
			res, err := generate(cmd, opts)
			if err != nil {
				return err
			}
			report(logger, res)
			if len(res.Diagnostics) > 0 {
				return res.Diagnostics
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d files, %d paths: ok\n", len(res.Files), len(res.Document.Paths))
			return nil
		},
	}
}

func runGenerate(cmd *cobra.Command, opts *options) error {
	logger, logf := loggers(cmd, opts)
	res, err := generate(cmd, opts)
	if err != nil {
		return err
	}
	report(logger, res)
	if opts.strict && len(res.Diagnostics) > 0 {
		return res.Diagnostics
	}

	cfg := res.cfg
	if cfg.Output == "" {
		return oas.Encode(cmd.OutOrStdout(), res.Document, cfg.OutputFormat())
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Output), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err := oas.Encode(f, res.Document, cfg.OutputFormat()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logf("wrote %s (%s)", cfg.Output, cfg.OutputFormat())
	return nil
}

type result struct {
	*generator.Result
	cfg *config.Config
}

func generate(cmd *cobra.Command, opts *options) (*result, error) {
	_, logf := loggers(cmd, opts)
	cfg, err := opts.load(cmd)
	if err != nil {
		return nil, err
	}
	logf("base dir %s, patterns %v, models %v", cfg.BaseDir, cfg.Files, cfg.Models)
	res, err := generator.Run(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	for _, f := range res.Files {
		logf("processed %s", f)
	}
	logf("%d files, %d paths, %d tags", len(res.Files), len(res.Document.Paths), len(res.Document.Tags))
	return &result{Result: res, cfg: cfg}, nil
}

// load reads the config sources then applies the flags that were set.
func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	file := o.configFile
	if file == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			file = DefaultConfigFile
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	cfg, err := config.Load(config.Source{File: file, Environ: o.environ})
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("title", &cfg.Info.Title, o.title)
	set("api-version", &cfg.Info.Version, o.version)
	set("base-dir", &cfg.BaseDir, o.baseDir)
	set("base", &cfg.Base, o.base)
	set("output", &cfg.Output, o.output)
	set("format", &cfg.Format, o.format)
	if flags.Changed("files") {
		cfg.Files = o.files
	}
	if flags.Changed("models") {
		cfg.Models = o.models
	}
	if flags.Changed("server") {
		cfg.Servers = o.servers
	}
	return cfg, nil
}

// loggers returns the diagnostics logger and a logf that prints only with --verbose.
func loggers(cmd *cobra.Command, opts *options) (*log.Logger, func(string, ...any)) {
	logger := log.New(cmd.ErrOrStderr(), "oasdoc: ", 0)
	logf := func(format string, a ...any) {
		if opts.verbose {
			logger.Printf(format, a...)
		}
	}
	return logger, logf
}

func report(logger *log.Logger, res *result) {
	for _, d := range res.Diagnostics {
		logger.Printf("skipped %v", d)
	}
}
