package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nohumanman/descenders-modding/internal/factory"
)

type Config struct {
	bind          string
	port          int
	storage       string
	redisURL      string
	sqlitePath    string
	logLevel      string
	timeURLBase   string
	secureCookies bool
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	switch c.storage {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if c.redisURL == "" {
			return errors.New("--redis-url is required with --storage=redis")
		}
	case factory.StorageTypeSQLite:
		if c.sqlitePath == "" {
			return errors.New("--sqlite-path is required with --storage=sqlite")
		}
	default:
		return fmt.Errorf("invalid storage backend: %q", c.storage)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c *Config) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.logLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.logLevel, err)
	}
	return lvl, nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SPLITTIMER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "splittimer",
		Short:         "Live player registry and moderation API for the split-timer dashboard.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.PersistentFlags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: SPLITTIMER_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: SPLITTIMER_PORT)")
	fs.StringVar(&cfg.storage, "storage", factory.StorageTypeMemory, "storage backend: memory, redis or sqlite (env: SPLITTIMER_STORAGE)")
	fs.StringVar(&cfg.redisURL, "redis-url", "", "redis connection url (env: SPLITTIMER_REDIS_URL)")
	fs.StringVar(&cfg.sqlitePath, "sqlite-path", "splittimer.db", "sqlite database file (env: SPLITTIMER_SQLITE_PATH)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "log level: debug, info, warn or error (env: SPLITTIMER_LOG_LEVEL)")
	fs.StringVar(&cfg.timeURLBase, "time-url-base", factory.DefaultTimeURLBase, "site linked from verified time announcements (env: SPLITTIMER_TIME_URL_BASE)")
	fs.BoolVar(&cfg.secureCookies, "secure-cookies", false, "mark session cookies https-only (env: SPLITTIMER_SECURE_COOKIES)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.AddCommand(newAllowListCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("splittimer v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
