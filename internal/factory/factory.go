package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/nohumanman/descenders-modding/internal/api"
	"github.com/nohumanman/descenders-modding/internal/config"
	"github.com/nohumanman/descenders-modding/internal/connection"
	"github.com/nohumanman/descenders-modding/internal/dependencies/clock"
	"github.com/nohumanman/descenders-modding/internal/dependencies/random"
	"github.com/nohumanman/descenders-modding/internal/identity/discord"
	"github.com/nohumanman/descenders-modding/internal/notify"
	"github.com/nohumanman/descenders-modding/internal/registry"
	"github.com/nohumanman/descenders-modding/internal/services/auth"
	"github.com/nohumanman/descenders-modding/internal/services/command"
	"github.com/nohumanman/descenders-modding/internal/services/records"
	"github.com/nohumanman/descenders-modding/internal/storage"
	"github.com/nohumanman/descenders-modding/internal/storage/memory"
	redisstorage "github.com/nohumanman/descenders-modding/internal/storage/redis"
	"github.com/nohumanman/descenders-modding/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// DefaultTimeURLBase is the public site verified runs link to
const DefaultTimeURLBase = "https://modkit.nohumanman.com"

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Live state
	Registry *registry.Registry

	// Services
	IdentityCache *auth.IdentityCache
	Resolver      *auth.Resolver
	Commands      *command.Service
	Records       *records.Service
	Notifier      notify.Notifier
	Gateway       *connection.Gateway

	// Login is nil when no OAuth client is configured
	Login  *discord.Provider
	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// Discord holds OAuth and webhook settings; empty values disable login
	// and announcements
	Discord config.Discord
	// TimeURLBase is linked from announcements (optional)
	TimeURLBase string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	provider := discord.New(discord.Config{
		ClientID:     cfg.Discord.ClientID,
		ClientSecret: cfg.Discord.ClientSecret,
		RedirectURL:  cfg.Discord.RedirectURL,
		APIBaseURL:   cfg.Discord.APIBaseURL,
		Scopes:       cfg.Discord.Scopes,
	})

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Discord.WebhookEnabled() {
		base := cfg.TimeURLBase
		if base == "" {
			base = DefaultTimeURLBase
		}
		webhook, err := notify.NewDiscord(notify.DiscordConfig{
			WebhookID:    cfg.Discord.WebhookID,
			WebhookToken: cfg.Discord.WebhookToken,
			TimeURLBase:  base,
		}, logger)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		notifier = webhook
	} else {
		logger.Info("discord webhook not configured, verified times will not be announced")
	}

	app := newWithDependencies(store, clock.New(), random.New(), provider, notifier, logger)
	if cfg.Discord.OAuthEnabled() {
		app.Login = provider
	} else {
		logger.Info("discord oauth not configured, dashboard login disabled")
	}
	return app, nil
}

func openStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		return redisStore, nil
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sqliteStore, nil
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	provider auth.IdentityProvider,
	notifier notify.Notifier,
	logger *slog.Logger,
) *App {
	reg := registry.New(logger)
	cache := auth.NewIdentityCache()
	resolver := auth.NewResolver(cache, provider, store, logger)
	commands := command.New(reg, logger)
	recordService := records.New(store, notifier, clk, rnd, logger)
	gateway := connection.NewGateway(reg, recordService, clk, logger)

	return &App{
		Storage:       store,
		Clock:         clk,
		Random:        rnd,
		Registry:      reg,
		IdentityCache: cache,
		Resolver:      resolver,
		Commands:      commands,
		Records:       recordService,
		Notifier:      notifier,
		Gateway:       gateway,
		logger:        logger,
	}
}

// Handler builds the HTTP router over the wired components
func (a *App) Handler(secureCookies bool) http.Handler {
	cfg := api.RouterConfig{
		Logger:        a.logger,
		Registry:      a.Registry,
		Commands:      a.Commands,
		Records:       a.Records,
		Resolver:      a.Resolver,
		Operators:     a.Storage,
		Clock:         a.Clock,
		Random:        a.Random,
		Gateway:       a.Gateway,
		SecureCookies: secureCookies,
	}
	// Leave the interface nil rather than wrapping a nil pointer
	if a.Login != nil {
		cfg.Login = a.Login
	}
	return api.NewRouter(cfg)
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
