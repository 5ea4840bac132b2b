package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/joaosnet/gitfolio/internal/config"
	"github.com/joaosnet/gitfolio/internal/generator"
	"github.com/joaosnet/gitfolio/internal/gitclient"
	"github.com/joaosnet/gitfolio/internal/preview"
	"github.com/joaosnet/gitfolio/internal/selector"
)

// templateFS embeds the project card templates.
//
//go:embed templates/*.html
var templateFS embed.FS

// resolveWorkers bounds the parallel preview resolutions. Each repository's
// resolution stays internally sequential.
const resolveWorkers = 4

func main() {
	indexPath := flag.String("index", "", "Path to the index.html to update (overrides PORTFOLIO_INDEX)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *indexPath != "" {
		cfg.IndexPath = *indexPath
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "gitfolio",
		Level: hclog.LevelFromString(cfg.LogLevel),
	})

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("portfolio update failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger hclog.Logger) error {
	client := gitclient.New(cfg.Token, cfg.Timeout, logger)

	records, err := client.ListRepositories(ctx, cfg.PrimaryAccount)
	if err != nil {
		// Still refresh the footer dates below; an unreachable API must
		// not leave the page stale.
		logger.Warn("could not fetch repositories from any endpoint", "error", err)
	}

	sel := selector.Selector{PrimaryAccount: cfg.PrimaryAccount, SelfRepo: cfg.SelfRepo}
	selected := sel.Select(records, cfg.ProjectLimit)
	logger.Info("selected projects", "selected", len(selected), "fetched", len(records))

	resolver := preview.NewResolver(client, preview.Options{
		AssetsDir:             cfg.AssetsDir,
		PlaceholderPath:       cfg.PlaceholderPath,
		DisableAvatarFallback: cfg.DisableAvatarFallback,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveWorkers)
	for i := range selected {
		i := i
		g.Go(func() error {
			res := resolver.Resolve(gctx, selected[i])
			selected[i].Preview = &res
			return nil
		})
	}
	// Resolution absorbs its own failures; nothing to propagate.
	_ = g.Wait()

	gen, err := generator.New(templateFS, cfg.PrimaryAccount, logger)
	if err != nil {
		return err
	}
	fragment, err := gen.RenderProjects(selected)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(cfg.IndexPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", cfg.IndexPath, err)
	}

	doc, spliced := generator.SpliceProjects(string(raw), fragment)
	if !spliced {
		logger.Warn("projects block not replaced", "reason", "missing markers or empty fragment")
		// Keep whatever is on the page presentable: old avatar images in
		// the block are swapped for the placeholder.
		var n int
		doc, n = generator.SanitizeProjectImages(doc, cfg.PlaceholderPath)
		if n > 0 {
			logger.Info("sanitized stale project images", "count", n)
		}
	}
	doc = generator.RefreshFooter(doc, time.Now())

	if err := os.WriteFile(cfg.IndexPath, []byte(doc), 0644); err != nil {
		return fmt.Errorf("write %s: %w", cfg.IndexPath, err)
	}
	logger.Info("index updated", "path", cfg.IndexPath, "projects", len(selected))

	for _, p := range resolver.DownloadedFiles() {
		logger.Info("downloaded image needs to be committed", "path", p)
	}
	return nil
}
