// Package main provides the graphdoc CLI entry point: a batch converter
// that turns YAML graph documents into Mermaid diagram source according to
// a directory of registered graph-type mappings.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/graphdoc/internal/convert"
	"go.jacobcolvin.com/graphdoc/internal/registry"
	"go.jacobcolvin.com/graphdoc/internal/tree"
	"go.jacobcolvin.com/graphdoc/internal/yamlcst"
	"go.jacobcolvin.com/graphdoc/log"
	"go.jacobcolvin.com/graphdoc/profile"
	"go.jacobcolvin.com/graphdoc/version"
)

type config struct {
	typesDir  string
	output    string
	printTree bool
	log       *log.Config
	profile   *profile.Config
}

func main() {
	cfg := &config{
		log:     log.NewConfig(),
		profile: profile.NewConfig(),
	}

	rootCmd := &cobra.Command{
		Use:           "graphdoc [flags] <file.yaml> [file2.yaml ...]",
		Short:         "Convert YAML graph documents to Mermaid diagrams",
		Long:          `graphdoc converts YAML files into Mermaid diagram source using a registered set of graph-type mappings, matched by file pattern.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       version.Version,
		RunE: func(_ *cobra.Command, args []string) error {
			return run(cfg, args)
		},
	}

	rootCmd.Flags().StringVar(&cfg.typesDir, "types-dir", "graph-types", "directory of registered graph-type mapping folders")
	rootCmd.Flags().StringVarP(&cfg.output, "output", "o", "", "write combined output to this path instead of stdout")
	rootCmd.Flags().BoolVar(&cfg.printTree, "tree", false, "also print the tree-view structure for each document, as JSON")

	cfg.log.RegisterFlags(rootCmd.Flags())
	cfg.profile.RegisterFlags(rootCmd.Flags())

	if err := cfg.log.RegisterCompletions(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config, args []string) error {
	handler, err := cfg.log.NewHandler(os.Stderr)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	profiler := cfg.profile.NewProfiler()

	if err := profiler.Start(); err != nil {
		return fmt.Errorf("start profiling: %w", err)
	}
	defer func() {
		if stopErr := profiler.Stop(); stopErr != nil {
			logger.Error("stop profiling", "error", stopErr)
		}
	}()

	reg := registry.New()
	if err := reg.LoadDir(cfg.typesDir); err != nil {
		return fmt.Errorf("load graph types: %w", err)
	}

	engine := convert.NewEngine(convert.WithEngineLogger(logger))

	var out io.Writer = os.Stdout

	if cfg.output != "" {
		f, err := os.Create(cfg.output) //nolint:gosec // Output path comes from a CLI flag by design.
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()

		out = f
	}

	for _, path := range args {
		if err := convertOne(cfg, reg, engine, path, out, logger); err != nil {
			return err
		}
	}

	return nil
}

func convertOne(cfg *config, reg *registry.Registry, engine *convert.Engine, path string, out io.Writer, logger *slog.Logger) error {
	gt, ok := reg.GetForFile(path)
	if !ok {
		return fmt.Errorf("no registered graph type matches %s", path)
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	result, err := engine.Convert(text, gt)
	if err != nil {
		return fmt.Errorf("convert %s: %w", path, err)
	}

	for _, e := range result.Errors {
		logger.Warn("validation", "file", path, "path", e.Path, "message", e.Message, "severity", e.Severity)
	}

	fmt.Fprintf(out, "---\nfile: %s\ngraph-type: %s v%d\n---\n", path, gt.ID, gt.Version)
	fmt.Fprintln(out, result.MermaidSource)

	if cfg.printTree {
		parsed, err := yamlcst.Parse(text)
		if err != nil {
			return fmt.Errorf("parse %s for tree view: %w", path, err)
		}

		nodes := tree.Build(parsed, gt)

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		if err := enc.Encode(nodes); err != nil {
			return fmt.Errorf("encode tree for %s: %w", path, err)
		}
	}

	return nil
}
