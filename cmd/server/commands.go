package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/aashari/go-generative-gateway/internal/app"
	"github.com/aashari/go-generative-gateway/internal/config"
	"github.com/aashari/go-generative-gateway/internal/database"
	"github.com/aashari/go-generative-gateway/internal/filter"
	"github.com/aashari/go-generative-gateway/internal/handlers"
	"github.com/aashari/go-generative-gateway/internal/logger"
	"github.com/aashari/go-generative-gateway/internal/models"
	"github.com/aashari/go-generative-gateway/internal/selector"
	"github.com/aashari/go-generative-gateway/internal/types"
	"github.com/aashari/go-generative-gateway/internal/utils"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "generative-gateway",
		Short:        "Multi-provider AI gateway",
		Long:         "generative-gateway resolves models across claude, openai and google, forwards requests to an orchestration webhook and tracks asynchronous generation jobs.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML or JSON config file (default: search ., ./config, /etc/ai-gateway)")

	root.AddCommand(serveCmd(&configPath))
	root.AddCommand(modelsCmd())
	root.AddCommand(resolveCmd())
	root.AddCommand(usageCmd(&configPath))
	root.AddCommand(versionCmd())
	return root
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP gateway (default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

// loadConfig reads .env files and the layered configuration, then
// initializes logging from it.
func loadConfig(configPath string) (*config.Config, error) {
	envFile, envErr := config.LoadEnvFromMultiplePaths()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := logger.WithComponent(context.Background(), logger.ComponentNames.Config)
	if envErr != nil {
		logger.Warn(ctx, "Failed to load .env file", "error", envErr.Error())
	} else if envFile != "" {
		logger.Info(ctx, "Loaded environment file", "path", envFile)
	}
	return cfg, nil
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		logger.Error(logger.WithComponent(ctx, logger.ComponentNames.App), "Failed to initialize application", err)
		return err
	}
	logger.Info(logger.WithComponent(ctx, logger.ComponentNames.App), "Swagger documentation available",
		"url", "http://"+cfg.Server.Addr()+"/swagger/index.html")
	return application.Run(ctx)
}

func modelsCmd() *cobra.Command {
	var provider string
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the model catalog and how each entry resolves",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, ok := filter.EntriesByProvider(models.Catalog(""), provider)
			if !ok {
				return fmt.Errorf("unknown provider: %s", provider)
			}
			return printModels(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().StringVarP(&provider, "provider", "p", "", "filter by provider (claude, openai, google or an alias)")
	return cmd
}

func printModels(out io.Writer, entries []types.CatalogEntry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROVIDER\tTIER\tVALID\tRESOLVES TO")
	for _, e := range entries {
		info := handlers.ModelInfoFor(e)
		target := info.ID
		if info.FallbackTo != "" {
			target = info.FallbackTo
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", info.ID, info.OwnedBy, info.Tier, info.Valid, target)
	}
	return w.Flush()
}

func resolveCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "resolve <model>",
		Short: "Show the provider, model and mode a request would be dispatched with",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model := ""
			if len(args) == 1 {
				model = args[0]
			}
			sel := selector.Resolve(model, mode)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sel)
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "explicit mode (chat, image, video)")
	return cmd
}

func usageCmd(configPath *string) *cobra.Command {
	var since time.Duration
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Summarize logged dispatches per provider (requires database.uri)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Database.URI == "" {
				return fmt.Errorf("usage log is disabled: set MONGODB_URI or database.uri")
			}
			ctx := cmd.Context()
			dbConfig := database.NewDatabaseConfig(cfg.Database.URI, cfg.Database.Name,
				cfg.Logging.Environment, cfg.Logging.ServiceName, cfg.Database.Timeout)
			conn, err := database.Connect(ctx, dbConfig)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Disconnect(context.Background()) }()

			summaries, err := conn.UsageRepository().SummarizeByProvider(ctx, time.Now().Add(-since))
			if err != nil {
				return err
			}
			return printUsage(cmd.OutOrStdout(), summaries)
		},
	}
	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "look-back window")
	return cmd
}

func printUsage(out io.Writer, summaries []database.ProviderSummary) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tDISPATCHES\tFAILURES\tFALLBACKS\tJOBS\tAVG MS")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%.0f\n", s.Provider, s.Dispatches, s.Failures, s.Fallbacks, s.Jobs, s.AvgDurationMs)
	}
	return w.Flush()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", utils.ServiceName, utils.ServiceVersion)
		},
	}
}
