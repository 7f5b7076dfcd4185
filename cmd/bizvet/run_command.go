package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bizvet/bizvet/internal/config"
	"github.com/bizvet/bizvet/internal/dataset"
	"github.com/bizvet/bizvet/internal/domain"
	logpkg "github.com/bizvet/bizvet/internal/logger"
	"github.com/bizvet/bizvet/internal/metrics"
	registryrepo "github.com/bizvet/bizvet/internal/repository/registry"
	openaitr "github.com/bizvet/bizvet/internal/transport/openai"
	"github.com/bizvet/bizvet/internal/transport/ops"
	"github.com/bizvet/bizvet/internal/transport/zyte"
	activityuc "github.com/bizvet/bizvet/internal/usecase/activity"
	classicaluc "github.com/bizvet/bizvet/internal/usecase/classical"
	expansionuc "github.com/bizvet/bizvet/internal/usecase/expansion"
	fusionuc "github.com/bizvet/bizvet/internal/usecase/fusion"
	pipelineuc "github.com/bizvet/bizvet/internal/usecase/pipeline"
	registryuc "github.com/bizvet/bizvet/internal/usecase/registry"
	semanticuc "github.com/bizvet/bizvet/internal/usecase/semantic"
	"github.com/bizvet/bizvet/internal/version"
)

const healthCheckTimeout = 15 * time.Second

func newRunCommand() *cobra.Command {
	var (
		inputPath     string
		outputPath    string
		maxRows       int
		batchSize     int
		skipPreflight bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Verify business records against the corporate registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerification(cmd, inputPath, outputPath, maxRows, batchSize, skipPreflight)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input CSV of scraped business records")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "results.csv", "Output CSV of verdicts")
	cmd.Flags().IntVar(&maxRows, "max-rows", 0, "Load at most this many records (0 = all)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Records per processing batch (0 = configured default)")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip the completion provider health check")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// runVerification is the composition root: it wires the shared rate-limited
// clients into the pipeline and drives one full run.
func runVerification(cmd *cobra.Command, inputPath, outputPath string, maxRows, batchSize int, skipPreflight bool) error {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if maxRows > 0 {
		cfg.Pipeline.MaxRows = maxRows
	}
	if batchSize > 0 {
		cfg.Pipeline.BatchSize = batchSize
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger = logger.With(zap.String("run_id", uuid.NewString()))
	logger.Info("Starting verification run",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Int("batch_size", cfg.Pipeline.BatchSize),
	)

	metrics.RegisterPipelineMetrics()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// One shared rate-limited client per external service.
	proxy := zyte.NewClient(&zyte.Config{
		APIKey:     cfg.Proxy.APIKey,
		Endpoint:   cfg.Proxy.Endpoint,
		RatePerSec: cfg.Proxy.RatePerSec,
		Logger:     logger,
	})
	defer proxy.Close()

	completer := openaitr.NewCompleter(&openaitr.Config{
		APIKey:     cfg.Completion.APIKey,
		BaseURL:    cfg.Completion.BaseURL,
		Model:      cfg.Completion.Model,
		RatePerSec: cfg.Completion.RatePerSec,
		TimeoutSec: cfg.Completion.TimeoutSec,
		Logger:     logger,
	})

	if !skipPreflight {
		healthCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		err = completer.HealthCheck(healthCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("completion provider unreachable: %w", err)
		}
	}

	opsSrv := ops.NewServer(ops.Config{Port: cfg.Ops.Port, ShutdownSec: cfg.Ops.ShutdownSec}, logger)
	opsSrv.Start()
	defer opsSrv.Shutdown()

	repo := registryrepo.New(proxy, registryrepo.Config{
		SearchURL:     cfg.Registry.SearchURL,
		DetailURL:     cfg.Registry.DetailURL,
		ResultLimit:   cfg.Registry.ResultLimit,
		SearchTimeout: time.Duration(cfg.Proxy.SearchTimeoutSec) * time.Second,
		DetailTimeout: time.Duration(cfg.Proxy.DetailTimeoutSec) * time.Second,
	})

	decider := fusionuc.NewService(
		classicaluc.NewMatcher(classicaluc.Config{
			Threshold:     cfg.Matching.FuzzyThreshold,
			NameWeight:    cfg.Matching.NameWeight,
			AddressWeight: cfg.Matching.AddressWeight,
		}),
		semanticuc.New(completer, logger),
		activityuc.New(completer, activityuc.Config{LowThreshold: cfg.Activity.LowThreshold}, logger),
		logger,
	)
	pipe := pipelineuc.NewService(
		expansionuc.New(completer, logger),
		registryuc.NewService(repo, logger),
		decider,
		pipelineuc.Config{BatchSize: cfg.Pipeline.BatchSize},
		logger,
	)

	records, err := dataset.NewReader(inputPath, cfg.Pipeline.MaxRows, logger).Read()
	if err != nil {
		return fmt.Errorf("load input: %w", err)
	}
	logger.Info("Input loaded", zap.Int("records", len(records)))

	writer, err := dataset.NewWriter(outputPath)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}

	usageCtx, usage := domain.NewContextWithUsage(ctx)

	start := time.Now()
	summary, runErr := pipe.Run(usageCtx, records, writer)
	elapsed := time.Since(start)

	if err := writer.Close(); err != nil {
		logger.Error("Close output", zap.Error(err))
	}

	logger.Info("Run finished",
		zap.Int("records", summary.Records),
		zap.Int("kept", summary.Kept),
		zap.Int("batches", summary.Batches),
		zap.Duration("duration", elapsed),
		zap.Int64("prompt_tokens", usage.PromptTokens()),
		zap.Int64("total_tokens", usage.TotalTokens()),
		zap.Int64("completion_calls", usage.Calls()),
	)

	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary, usage.TotalTokens(), elapsed))

	if runErr != nil {
		return fmt.Errorf("verification run: %w", runErr)
	}
	return nil
}
