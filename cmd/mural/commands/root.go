package commands

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/rushteam/mural/catalog"
	"github.com/rushteam/mural/config"
	_ "github.com/rushteam/mural/config/builders"
	"github.com/rushteam/mural/core"
	"github.com/rushteam/mural/feed"
	"github.com/rushteam/mural/preference"
	"github.com/rushteam/mural/recall"
)

// NewRootCmd 创建根命令
func NewRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "mural",
		Short: "Match university opportunities to your selected tags",
		Long: `mural ranks laboratories, junior enterprises and competition teams
by similarity to the mean embedding of the tags you select.

Examples:
  mural tags list
  mural tags toggle inteligencia_artificial
  mural rank --page 1 --page-size 10
  mural allocate --threshold 0.35 --max 12`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("MURAL_CONFIG"), "Path to YAML config file")

	cmd.AddCommand(newTagsCmd(&configPath))
	cmd.AddCommand(newRankCmd(&configPath))
	cmd.AddCommand(newAllocateCmd(&configPath))
	return cmd
}

// Execute 执行根命令
func Execute() error {
	return NewRootCmd().Execute()
}

// app 是一次命令执行所需的依赖。
type app struct {
	cfg      *config.Config
	store    core.Store
	loader   *catalog.Loader
	snapshot *catalog.Snapshot
	prefs    *preference.Service
	logger   *log.Logger
}

func newApp(ctx context.Context, cmd *cobra.Command, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger := log.New(cmd.ErrOrStderr(), "mural: ", 0)

	s, err := cfg.OpenStore()
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
	}

	loader := catalog.NewLoader(catalog.NewSourceReader(cfg.CatalogTimeout()))
	loader.OnSourceError = func(source string, err error) {
		logger.Printf("opportunity source %s unavailable: %v", source, err)
	}

	a := &app{cfg: cfg, store: s, loader: loader, logger: logger}
	if err := a.reload(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return a, nil
}

// reload 重新读取目录，并基于新目录重建偏好服务。
func (a *app) reload(ctx context.Context) error {
	snap, err := a.loader.LoadAll(ctx, catalog.Sources{
		Tags:          a.cfg.Catalog.Tags,
		Opportunities: a.cfg.Catalog.Opportunities,
	})
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	a.snapshot = snap

	ns := a.cfg.Store.Namespace
	prefs := preference.NewService(
		snap.Tags,
		preference.NewStoreSelection(a.store, ns),
		preference.NewStoreCache(a.store, ns, a.cfg.Store.TTL),
	)
	prefs.Logger = a.logger
	a.prefs = prefs
	return nil
}

func (a *app) feed() (*feed.Service, error) {
	p, err := a.cfg.PipelineConfig().BuildPipeline(config.DefaultFactory())
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}
	return &feed.Service{
		Recall:    &recall.CatalogSource{Catalog: a.snapshot.Opportunities},
		Pipeline:  p,
		Cache:     a.prefs.Cache,
		Selection: a.prefs.Selection,
		PageSize:  a.cfg.Ranking.PageSize,
		Logger:    a.logger,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
