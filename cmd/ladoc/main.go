package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ladoc-dev/ladoc/internal/config"
	"github.com/ladoc-dev/ladoc/internal/mcp"
	"github.com/ladoc-dev/ladoc/internal/render"
	"github.com/ladoc-dev/ladoc/pkg/types"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Logs go to stderr; stdout is reserved for documents and the MCP
	// protocol
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "ladoc",
		Short: "Generate AI-described documentation models for a source tree",
		Long: `ladoc scans a source tree, extracts a language-agnostic model of its
functions, methods, and classes, and enriches that model with
natural-language descriptions from a text-generation service.

Descriptions are cached by content fingerprint, so re-running over
unchanged code makes no external calls.`,
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")

	generateCmd := &cobra.Command{
		Use:   "generate [path]",
		Short: "Analyze a project and write the documentation model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, configPath)
		},
	}
	generateCmd.Flags().StringP("output", "o", "", "Write Markdown here instead of stdout")
	generateCmd.Flags().Bool("json", false, "Emit the raw project model as JSON instead of Markdown")
	generateCmd.Flags().Bool("include-tests", false, "Analyze test files too")

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the description cache",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print cache entry and counter totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheStats(configPath)
		},
	})
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every cached description",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheClear(configPath)
		},
	})

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over MCP stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ladoc %s (built %s)\n", version, buildTime)
		},
	}

	rootCmd.AddCommand(generateCmd, cacheCmd, serveCmd, versionCmd)
	return rootCmd
}

func runGenerate(cmd *cobra.Command, args []string, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	projectPath := "."
	if len(args) > 0 {
		projectPath = args[0]
	}
	projectPath, err = filepath.Abs(projectPath)
	if err != nil {
		return fmt.Errorf("cannot resolve project path: %w", err)
	}

	if includeTests, _ := cmd.Flags().GetBool("include-tests"); includeTests {
		cfg.Run.IncludeTests = true
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := signalContext()
	defer cancel()

	model, err := p.Runner.Run(ctx, projectPath, p.RunConfig)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	output, err := encodeModel(model, asJSON)
	if err != nil {
		return err
	}

	if outPath, _ := cmd.Flags().GetString("output"); outPath != "" {
		if err := os.WriteFile(outPath, output, 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		slog.Info("document written", "path", outPath)
		return nil
	}

	_, err = os.Stdout.Write(output)
	return err
}

func encodeModel(model *types.ProjectModel, asJSON bool) ([]byte, error) {
	if asJSON {
		data, err := json.MarshalIndent(model, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode model: %w", err)
		}
		return append(data, '\n'), nil
	}
	return render.Markdown(model), nil
}

func runCacheStats(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	stats := store.Stats()
	fmt.Printf("entries: %d\nhits: %d\nmisses: %d\n", stats.Entries, stats.Hits, stats.Misses)
	return nil
}

func runCacheClear(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Clear(); err != nil {
		return err
	}
	slog.Info("cache cleared", "path", cfg.Cache.Path)
	return nil
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	server := mcp.NewServer(p.Runner, p.Store, p.RunConfig)

	ctx, cancel := signalContext()
	defer cancel()

	slog.Info("MCP server ready, listening on stdio", "version", version)
	return server.Serve(ctx)
}

// signalContext returns a context canceled on SIGINT/SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
