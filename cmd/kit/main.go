package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/timmy/socialkit/internal/config"
	"github.com/timmy/socialkit/internal/domain"
	"github.com/timmy/socialkit/internal/logger"
	"github.com/timmy/socialkit/internal/service"
	"github.com/timmy/socialkit/internal/source/local"
)

func main() {
	imagePath := flag.String("image", "", "Source image (png, jpeg, gif, webp)")
	platforms := flag.String("platforms", "", "Comma-separated platform ids, or \"all\"")
	themeName := flag.String("theme", "original", "Theme: original, light or dark")
	brief := flag.String("brief", "", "Creative brief passed to both models")
	outDir := flag.String("out", "./kit", "Output directory")
	configPath := flag.String("config", "", "Path to config file")
	list := flag.Bool("list", false, "List platform ids and exit")
	flag.Parse()

	if *list {
		for _, p := range domain.ListPlatforms() {
			fmt.Printf("%-14s %-12s %-16s %s\n", p.ID, p.Name, p.PostType, p.AspectRatio)
		}
		return
	}

	if err := run(*configPath, *imagePath, *platforms, *themeName, *brief, *outDir); err != nil {
		logger.GetDefault().WithError(err).Error("Kit generation failed")
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(configPath, imagePath, platformList, themeName, brief, outDir string) error {
	if imagePath == "" {
		return fmt.Errorf("-image is required")
	}
	theme, err := domain.ParseTheme(themeName)
	if err != nil {
		return err
	}
	ids, err := parsePlatforms(platformList)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	opts := cfg.Log.LoggerOptions("socialkit-cli")
	opts.Format = "text"
	logger.SetDefaultLogger(logger.New(opts))
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	raw, err := local.NewAdapter("").Load(ctx, imagePath)
	if err != nil {
		return err
	}
	src, info, err := service.NewSourceImage(raw.Data)
	if err != nil {
		return err
	}
	logger.CtxInfo(ctx, "Loaded %s: %s %dx%d", imagePath, info.Format, info.Width, info.Height)

	session := service.NewSession("cli", service.NewGeminiStrategist(&service.GeminiConfig{
		APIKey:  cfg.Gemini.APIKey,
		BaseURL: cfg.Gemini.BaseURL,
		Model:   cfg.Gemini.StrategyModel,
		Timeout: cfg.Gemini.Timeout,
	}), service.NewGeminiRenderer(&service.GeminiConfig{
		APIKey:  cfg.Gemini.APIKey,
		BaseURL: cfg.Gemini.BaseURL,
		Model:   cfg.Gemini.RenderModel,
		Timeout: cfg.Gemini.Timeout,
	}), service.WithEventBuffer(len(ids)+4), service.WithLogger(logger.GetDefault()))

	events, unsubscribe := session.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range events {
			if e.Type == service.EventItemCompleted && e.Result != nil {
				logger.With(logger.Fields{logger.FieldProgress: e.Status.Progress}).
					Info(ctx, "Rendered %s (%s)", e.Result.Platform.ID, e.Result.Platform.AspectRatio)
			}
		}
	}()

	start := time.Now()
	batchErr := session.StartBatch(ctx, service.BatchRequest{
		Source:      src,
		PlatformIDs: ids,
		Brief:       brief,
		Theme:       theme,
	})
	unsubscribe()
	<-done

	// Partial kits are still written.
	results := session.Results()
	if len(results) > 0 {
		assets, err := service.WriteKit(ctx, outDir, results)
		if err != nil {
			return err
		}
		logger.With(logger.Fields{logger.FieldCount: len(assets)}).WithDuration(start).
			Info(ctx, "Kit written to %s", outDir)
	}
	return batchErr
}

func parsePlatforms(list string) ([]string, error) {
	list = strings.TrimSpace(list)
	if list == "" || list == "all" {
		return domain.PlatformIDs(), nil
	}
	var ids []string
	for _, id := range strings.Split(list, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, err := domain.FindPlatform(id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
