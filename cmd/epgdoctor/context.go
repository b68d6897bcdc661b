package main

import (
	"context"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/spf13/cobra"

	"epgdoctor/internal/batch"
	"epgdoctor/internal/config"
	"epgdoctor/internal/identity"
	"epgdoctor/internal/logging"
	"epgdoctor/internal/match"
	"epgdoctor/internal/report"
	"epgdoctor/internal/schedule"
	"epgdoctor/internal/services/dispatcharr"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	storeOnce sync.Once
	store     *schedule.Store
	storeErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			LogDir: cfg.Paths.LogDir,
		})
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) ensureStore() (*schedule.Store, error) {
	c.storeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.storeErr = err
			return
		}
		c.store, c.storeErr = schedule.Open(cfg.ProgramCachePath())
	})
	return c.store, c.storeErr
}

// close releases the program cache. Safe to call when nothing was opened.
func (c *commandContext) close() {
	if c.store != nil {
		_ = c.store.Close()
	}
}

// newValidator layers the program cache over the live instance so repeated
// probes of one guide identity cost a single API call.
func (c *commandContext) newValidator(client *dispatcharr.Client) (schedule.Validator, error) {
	store, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return schedule.NewCachingValidator(client, store,
		schedule.WithCacheLogger(logging.NewComponentLogger(logger, "schedule"))), nil
}

func (c *commandContext) dialDispatcharr() (*dispatcharr.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.Dispatcharr.TimeoutSeconds) * time.Second
	return dispatcharr.NewClient(cfg.Dispatcharr.URL, cfg.Dispatcharr.APIToken, timeout)
}

func (c *commandContext) newSelector(validator schedule.Validator) (*match.Selector, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	matchCfg := match.Config{
		Decorations: identity.Flags{
			Quality:    cfg.Matching.IgnoreQualityTags,
			Regional:   cfg.Matching.IgnoreRegionalTags,
			Geographic: cfg.Matching.IgnoreGeographicTags,
			Misc:       cfg.Matching.IgnoreMiscTags,
		},
		SourcePriority: cfg.Matching.SourcePriority,
		FuzzyThreshold: cfg.Matching.FuzzyThreshold,
	}
	return match.NewSelector(matchCfg, validator,
		match.WithPrefetch(cfg.Scan.ValidationPrefetch),
		match.WithLogger(logging.NewComponentLogger(logger, "match")))
}

func (c *commandContext) newRunner(client *dispatcharr.Client, validator schedule.Validator, selector *match.Selector) (*batch.Runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return batch.NewRunner(validator, selector,
		batch.WithWorkers(cfg.Scan.Workers),
		batch.WithApplier(client),
		batch.WithApplyThreshold(cfg.Matching.ApplyConfidenceThreshold),
		batch.WithRunnerLogger(logging.NewComponentLogger(logger, "batch"))), nil
}

func (c *commandContext) resultStore() (*report.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return report.NewStore(cfg.ResultsPath()), nil
}

// loadLineup fetches the channel lineup and joins each channel with its
// assigned guide identity.
func loadLineup(ctx context.Context, client *dispatcharr.Client, groups []string) ([]batch.Channel, []match.Candidate, error) {
	channels, err := client.ListChannels(ctx, groups)
	if err != nil {
		return nil, nil, err
	}
	records, err := client.ListEPGData(ctx)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[int64]dispatcharr.EPGData, len(records))
	pool := make([]match.Candidate, 0, len(records))
	for _, record := range records {
		byID[record.ID] = record
		pool = append(pool, match.Candidate{ID: record.ID, Name: record.Name, Source: record.SourceName})
	}

	lineup := make([]batch.Channel, 0, len(channels))
	for _, channel := range channels {
		entry := batch.Channel{
			ID:        channel.ID,
			Name:      channel.Name,
			Group:     channel.Group,
			EPGDataID: channel.EPGDataID,
		}
		if record, ok := byID[channel.EPGDataID]; ok {
			entry.EPGName = record.Name
			entry.EPGSource = record.SourceName
		}
		lineup = append(lineup, entry)
	}
	return lineup, pool, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
