package main

import (
	"bufio"
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ferndale/pantryd/internal/backup"
	"github.com/ferndale/pantryd/internal/cache"
	"github.com/ferndale/pantryd/internal/config"
	"github.com/ferndale/pantryd/internal/grocery"
	"github.com/ferndale/pantryd/internal/logging"
	"github.com/ferndale/pantryd/internal/model"
	"github.com/ferndale/pantryd/internal/remote"
	"github.com/ferndale/pantryd/internal/syncer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := cache.Open(cfg.CachePath)
	if err != nil {
		log.Fatalf("failed to open cache: %v", err)
	}
	defer db.Close()
	localCache := cache.New(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *remote.Store
	if cfg.MongoURI != "" {
		var disconnect func(context.Context) error
		store, disconnect, err = remote.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatalf("failed to connect remote store: %v", err)
		}
		defer disconnect(context.Background())
	} else {
		logger.Info("no remote store configured, running offline-only")
	}

	if store != nil && cfg.UserID != "" {
		if shared, err := store.QueryByField(ctx, "members", cfg.UserID); err != nil {
			logger.Warn("shared list discovery failed", "error", err)
		} else {
			logger.Info("shared lists discovered", "user", cfg.UserID, "count", len(shared))
		}
	}

	channelCfg := syncer.ChannelConfig{
		ActiveInterval: cfg.ActiveInterval,
		HiddenInterval: cfg.HiddenInterval,
		MaxInterval:    cfg.MaxInterval,
		Jitter:         400 * time.Millisecond,
	}

	var remoteStore syncer.RemoteStore
	if store != nil {
		remoteStore = store
	}
	engine := syncer.NewEngine(remoteStore, localCache, channelCfg, logger)
	defer engine.Close()

	for _, listID := range cfg.Lists {
		_, err := engine.Subscribe(ctx, listID, func(doc model.ListDocument) {
			logger.Debug("document updated",
				"list", listID, "items", len(doc.Items), "history", len(doc.History))
		})
		if err != nil {
			log.Fatalf("failed to subscribe %s: %v", listID, err)
		}
		logger.Info("subscribed", "list", listID, "offline", syncer.IsOffline(listID))
	}

	classifier := grocery.NewClassifier(cfg.ClassifierURL, grocery.NewResultCache(0))

	backups := backup.NewManager(backup.S3Config{
		Endpoint:  cfg.S3Endpoint,
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	}, localCache, logger)
	if backups.Enabled() && cfg.BackupPassphrase != "" {
		go runBackups(ctx, backups, cfg.BackupPassphrase, cfg.BackupInterval, logger)
	}

	go runCommands(ctx, engine, classifier, backups, cfg, logger)

	logger.Info("pantryd running", "lists", len(cfg.Lists))
	<-ctx.Done()
	logger.Info("shutting down")
}

// runCommands reads line commands from stdin:
//
//	add <list> <text>   parse text and append items to the list
//	buy <list> <names>  record the named items as purchased
//	suggest <text>      categorize text without touching any list
//	snapshot            upload an encrypted backup now
func runCommands(ctx context.Context, engine *syncer.Engine, classifier *grocery.Classifier, backups *backup.Manager, cfg config.Config, logger *slog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		engine.Touch()

		switch fields[0] {
		case "add":
			if len(fields) < 3 {
				logger.Warn("usage: add <list> <text>")
				continue
			}
			sub, err := engine.Subscribe(ctx, fields[1], nil)
			if err != nil {
				logger.Warn("add failed", "list", fields[1], "error", err)
				continue
			}
			added := sub.Session().AddText(strings.Join(fields[2:], " "))
			logger.Info("items added", "list", fields[1], "count", len(added))
		case "buy":
			if len(fields) < 3 {
				logger.Warn("usage: buy <list> <names>")
				continue
			}
			sub, err := engine.Subscribe(ctx, fields[1], nil)
			if err != nil {
				logger.Warn("buy failed", "list", fields[1], "error", err)
				continue
			}
			events := make([]model.PurchaseEvent, 0, len(fields)-2)
			for _, name := range fields[2:] {
				events = append(events, model.PurchaseEvent{Name: name, Category: grocery.Categorize(name)})
			}
			sub.Session().RecordPurchases(events)
			logger.Info("purchases recorded", "list", fields[1], "count", len(events))
		case "suggest":
			groups := grocery.CategorizeText(ctx, classifier, strings.Join(fields[1:], " "), nil, "")
			for _, g := range groups {
				names := make([]string, 0, len(g.Items))
				for _, it := range g.Items {
					names = append(names, it.Name)
				}
				logger.Info("suggestion", "category", g.Category, "items", strings.Join(names, ", "))
			}
		case "snapshot":
			if !backups.Enabled() || cfg.BackupPassphrase == "" {
				logger.Warn("backup not configured")
				continue
			}
			key, err := backups.Snapshot(ctx, cfg.BackupPassphrase)
			if err != nil {
				logger.Warn("snapshot failed", "error", err)
				continue
			}
			logger.Info("snapshot done", "key", key)
		default:
			logger.Warn("unknown command", "command", fields[0])
		}
	}
}

func runBackups(ctx context.Context, m *backup.Manager, passphrase string, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			if _, err := m.Snapshot(snapCtx, passphrase); err != nil {
				logger.Warn("scheduled snapshot failed", "error", err)
			}
			cancel()
		}
	}
}
