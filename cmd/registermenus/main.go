// Package main registers the consultation rich menus with the LINE platform
// and records the assigned ids in the local database.
//
// The bot links menus by logical name at runtime, so this command must run
// once (per channel) before the server can bind menus to users. Running it
// again is a no-op unless -force is given.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kentyisapen/line-chatbot-workshop/internal/config"
	"github.com/kentyisapen/line-chatbot-workshop/internal/consult"
	"github.com/kentyisapen/line-chatbot-workshop/internal/line"
	"github.com/kentyisapen/line-chatbot-workshop/internal/logger"
	"github.com/kentyisapen/line-chatbot-workshop/internal/metrics"
	"github.com/kentyisapen/line-chatbot-workshop/internal/storage"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// LINE rich menu full-size canvas.
const (
	menuWidth  = 2500
	menuHeight = 1686
)

// menuDef describes one rich menu to register. Each menu is a single
// full-canvas tap area firing one postback action.
type menuDef struct {
	name        string
	chatBarText string
	action      consult.Action
}

var menus = []menuDef{
	{
		name:        consult.MenuStartConsultation,
		chatBarText: consult.ActionStartConsultation.Label(),
		action:      consult.ActionStartConsultation,
	},
	{
		name:        consult.MenuInterruptConsultation,
		chatBarText: consult.ActionInterruptConsultation.Label(),
		action:      consult.ActionInterruptConsultation,
	},
}

func main() {
	force := flag.Bool("force", false, "recreate menus even if already registered")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel).WithModule("registermenus")

	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() { _ = db.Close() }()

	client, err := line.NewClient(line.ClientConfig{
		ChannelToken:        cfg.LineChannelToken,
		MaxMessagesPerReply: cfg.Bot.MaxMessagesPerReply,
		Logger:              log,
		Metrics:             metrics.New(prometheus.NewRegistry()),
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create LINE API client")
	}

	ctx := context.Background()
	g, ctx := errgroup.WithContext(ctx)
	for _, def := range menus {
		def := def
		g.Go(func() error {
			return register(ctx, def, *force, cfg, db, client, log)
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("Menu registration failed")
	}

	log.Info("All rich menus registered")
}

func register(ctx context.Context, def menuDef, force bool, cfg *config.Config, db *storage.DB, client *line.Client, log *logger.Logger) error {
	log = log.WithField("menu", def.name)

	existing, err := db.GetMenu(ctx, def.name)
	if err != nil {
		return fmt.Errorf("look up menu %s: %w", def.name, err)
	}
	if existing != nil && existing.RemoteID != "" {
		if !force {
			log.WithField("rich_menu_id", existing.RemoteID).Info("Menu already registered, skipping")
			return nil
		}
		if err := client.DeleteRichMenu(ctx, existing.RemoteID); err != nil {
			// The old menu may already be gone on the platform side.
			log.WithError(err).Warn("Failed to delete existing menu")
		}
	}

	richMenuID, err := client.CreateRichMenu(ctx, richMenuRequest(def))
	if err != nil {
		return fmt.Errorf("create menu %s: %w", def.name, err)
	}
	log = log.WithField("rich_menu_id", richMenuID)
	log.Info("Rich menu created")

	if err := uploadImage(ctx, client, richMenuID, filepath.Join(cfg.MenuImageDir, def.name+".jpg")); err != nil {
		return fmt.Errorf("upload image for menu %s: %w", def.name, err)
	}
	log.Info("Rich menu image uploaded")

	if err := db.SaveMenu(ctx, def.name, richMenuID); err != nil {
		return fmt.Errorf("save menu %s: %w", def.name, err)
	}
	log.Info("Rich menu binding saved")
	return nil
}

func richMenuRequest(def menuDef) *messaging_api.RichMenuRequest {
	return &messaging_api.RichMenuRequest{
		Size: &messaging_api.RichMenuSize{
			Width:  menuWidth,
			Height: menuHeight,
		},
		Selected:    true,
		Name:        def.name,
		ChatBarText: def.chatBarText,
		Areas: []messaging_api.RichMenuArea{
			{
				Bounds: &messaging_api.RichMenuBounds{
					X:      0,
					Y:      0,
					Width:  menuWidth,
					Height: menuHeight,
				},
				Action: &messaging_api.PostbackAction{
					Label: def.action.Label(),
					Data:  def.action.PostbackData(),
				},
			},
		},
	}
}

func uploadImage(ctx context.Context, client *line.Client, richMenuID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open menu image: %w", err)
	}
	defer func() { _ = f.Close() }()

	return client.UploadRichMenuImage(ctx, richMenuID, "image/jpeg", f)
}
