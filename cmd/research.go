package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/unlockegypt/heritage-researcher/internal/cache"
	"github.com/unlockegypt/heritage-researcher/internal/config"
	"github.com/unlockegypt/heritage-researcher/internal/encyclopedia"
	"github.com/unlockegypt/heritage-researcher/internal/export"
	"github.com/unlockegypt/heritage-researcher/internal/geocode"
	"github.com/unlockegypt/heritage-researcher/internal/logging"
	"github.com/unlockegypt/heritage-researcher/internal/pipeline"
	"github.com/unlockegypt/heritage-researcher/internal/primary"
	"github.com/unlockegypt/heritage-researcher/internal/progress"
	"github.com/unlockegypt/heritage-researcher/internal/progress/sinks"
	"github.com/unlockegypt/heritage-researcher/internal/ratelimit"
	"github.com/unlockegypt/heritage-researcher/internal/research"
	"github.com/unlockegypt/heritage-researcher/internal/tips"
	"github.com/unlockegypt/heritage-researcher/internal/translate"
)

// newResearchCmd creates the 'research' subcommand, which runs the full
// pipeline and writes the export document.
func newResearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "research",
		Short: "Runs the full research pipeline and exports the dataset",
		Long: `Enumerates the configured catalog listing pages, researches every
site through the five-stage pipeline, and writes the five-array JSON
export. Individual site failures are skipped; the run continues.`,
		RunE: runResearchCommand,
	}

	cmd.Flags().StringSlice("page-type", nil, "catalog sections to crawl (repeatable)")
	cmd.Flags().String("output", "", "export file path")
	cmd.Flags().Int("max-sites", 0, "maximum sites per page type (0 = all)")
	cmd.Flags().Bool("headless", true, "run the browser headless")
	_ = viper.BindPFlag("website.page_types", cmd.Flags().Lookup("page-type"))
	_ = viper.BindPFlag("output.path", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("research.max_sites_per_type", cmd.Flags().Lookup("max-sites"))
	_ = viper.BindPFlag("browser.headless", cmd.Flags().Lookup("headless"))

	return cmd
}

func runResearchCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	promSink, err := sinks.NewPrometheusSink(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	hub := progress.NewHub(
		progress.Config{Logger: logger.Named("progress")},
		sinks.NewLogSink(logger.Named("progress")),
		promSink,
	)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if cerr := hub.Close(closeCtx); cerr != nil {
			logger.Warn("progress hub close failed", zap.Error(cerr))
		}
	}()

	browser := primary.NewBrowser(primary.BrowserConfig{
		Headless:     cfg.Browser.Headless,
		UserAgent:    cfg.Website.UserAgent,
		WindowWidth:  cfg.Browser.WindowWidth,
		WindowHeight: cfg.Browser.WindowHeight,
		NavTimeout:   time.Duration(cfg.Browser.NavTimeoutSec) * time.Second,
	})
	defer browser.Close()

	pipe := buildPipeline(cfg, browser, hub, logger)
	defer pipe.Close()

	sites := pipe.Run(ctx, cfg.Website.PageTypes, cfg.Research.MaxSitesPerType)
	if err := ctx.Err(); err != nil {
		logger.Warn("run interrupted, exporting completed sites",
			zap.Int("sites", len(sites)))
	}

	doc := export.BuildDocument(sites)
	if err := export.WriteFile(cfg.Output.Path, doc, logger); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	logger.Info("research run finished", zap.Int("sites", len(sites)))
	return nil
}

func buildPipeline(cfg config.Config, browser *primary.Browser, hub *progress.Hub, logger *zap.Logger) *pipeline.Pipeline {
	limiter := ratelimit.New(ratelimit.Config{
		Intervals: map[ratelimit.Service]time.Duration{
			ratelimit.ServicePrimary:      time.Duration(cfg.RateLimit.PrimaryIntervalMs) * time.Millisecond,
			ratelimit.ServiceEncyclopedia: time.Duration(cfg.RateLimit.EncyclopediaIntervalMs) * time.Millisecond,
			ratelimit.ServiceGeocoding:    time.Duration(cfg.RateLimit.GeocodingIntervalMs) * time.Millisecond,
			ratelimit.ServiceTranslation:  time.Duration(cfg.RateLimit.TranslationIntervalMs) * time.Millisecond,
		},
	})
	retry := &research.RetryPolicy{
		MaxAttempts:      cfg.HTTP.MaxRetries,
		BaseDelay:        time.Duration(cfg.HTTP.BackoffInitialMs) * time.Millisecond,
		MaxDelay:         time.Duration(cfg.HTTP.BackoffMaxMs) * time.Millisecond,
		RateLimitedFloor: 2 * time.Second,
	}

	primarySource := primary.NewResearcher(
		cfg.Website.BaseURL,
		primary.NewProbeFetcher(cfg.Website.UserAgent, cfg.HTTPTimeout()),
		browser,
		primary.DefaultDetector(),
		primary.NewParser(cfg.Research.MaxImages),
		limiter,
		retry,
		logger.Named("primary"),
	)

	encyclopediaSource := encyclopedia.NewResearcher(
		encyclopedia.NewHTTPClient(
			cfg.Encyclopedia.EndpointTemplate,
			cfg.Encyclopedia.UserAgent,
			cfg.Encyclopedia.SearchLimit,
			cfg.HTTPTimeout(),
		),
		limiter,
		retry,
		encyclopedia.Config{
			MatchThreshold:     cfg.Research.MatchThreshold,
			MinParagraphLength: cfg.Research.MinParagraphLength,
			MaxFacts:           cfg.Research.MaxFacts,
		},
		logger.Named("encyclopedia"),
	)

	governorateCache := cache.New[geocode.Resolution]()
	governorateSource := geocode.NewResolver(
		geocode.NewHTTPClient(cfg.Geocoding.Endpoint, cfg.Geocoding.UserAgent, cfg.HTTPTimeout()),
		governorateCache,
		limiter,
		retry,
		logger.Named("geocode"),
	)

	termCache := cache.New[translate.Entry]()
	termSource := translate.NewExtractor(
		translate.NewHTTPClient(cfg.Translation.Endpoint, cfg.HTTPTimeout()),
		termCache,
		limiter,
		retry,
		cfg.Translation.SourceLang,
		cfg.Translation.TargetLang,
		cfg.Research.MaxTerms,
		logger.Named("translate"),
	)

	return pipeline.NewPipeline(
		primarySource,
		encyclopediaSource,
		governorateSource,
		termSource,
		tips.New(cfg.Research.MaxTips),
		pipeline.NewSynthesizer(cfg.Research.MaxSubLocations, logger.Named("synthesize")),
		cfg.Research.Concurrency,
		hub,
		[]pipeline.Clearable{governorateCache, termCache},
		logger.Named("pipeline"),
	)
}
