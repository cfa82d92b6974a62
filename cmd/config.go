package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teemow/teamdates/internal/availability"
	"github.com/teemow/teamdates/internal/instrumentation"
	"github.com/teemow/teamdates/internal/logging"
	"github.com/teemow/teamdates/internal/storage"
)

// Persistent flag names shared by every subcommand.
const (
	flagConfig        = "config"
	flagStorage       = "storage"
	flagDataFile      = "data-file"
	flagRedisAddr     = "redis-addr"
	flagRedisPassword = "redis-password"
	flagRedisDB       = "redis-db"
	flagRedisKey      = "redis-key"
	flagLogLevel      = "log-level"
	flagLogFormat     = "log-format"
)

// fileConfig mirrors the optional YAML config file.
type fileConfig struct {
	Storage struct {
		Type string `yaml:"type"`
		File struct {
			Path string `yaml:"path"`
		} `yaml:"file"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       *int   `yaml:"db"`
			Key      string `yaml:"key"`
		} `yaml:"redis"`
	} `yaml:"storage"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Settings is the resolved configuration of one invocation.
type Settings struct {
	Storage   storage.Config
	LogLevel  string
	LogFormat string
}

func addPersistentFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String(flagConfig, "", "Path to a YAML config file. Can also use TEAMDATES_CONFIG env var.")
	f.String(flagStorage, string(storage.TypeFile), "Storage backend: file, memory or redis. Can also use TEAMDATES_STORAGE env var.")
	f.String(flagDataFile, "", "Availability file for the file backend (default: $HOME/.teamdates/availability.json). Can also use TEAMDATES_DATA_FILE env var.")
	f.String(flagRedisAddr, storage.DefaultRedisAddr, "Redis server address. Can also use REDIS_ADDR env var.")
	f.String(flagRedisPassword, "", "Redis password. Can also use REDIS_PASSWORD env var.")
	f.Int(flagRedisDB, 0, "Redis database number. Can also use REDIS_DB env var.")
	f.String(flagRedisKey, storage.DefaultRedisKey, "Redis key holding the availability document. Can also use REDIS_KEY env var.")
	f.String(flagLogLevel, "info", "Log level: debug, info, warn or error. Can also use LOG_LEVEL env var.")
	f.String(flagLogFormat, logging.FormatText, "Log format: text or json. Can also use LOG_FORMAT env var.")
}

// loadSettings resolves each setting as flag > environment > YAML > default.
// A .env file in the working directory is loaded first when present; it
// never overrides variables already set.
func loadSettings(cmd *cobra.Command) (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var fc fileConfig
	if path := stringSetting(cmd, flagConfig, "TEAMDATES_CONFIG", ""); path != "" {
		loaded, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		fc = *loaded
	}

	redisDB, err := intSetting(cmd, flagRedisDB, "REDIS_DB", fc.Storage.Redis.DB)
	if err != nil {
		return nil, err
	}

	return &Settings{
		Storage: storage.Config{
			Type: storage.Type(stringSetting(cmd, flagStorage, "TEAMDATES_STORAGE", fc.Storage.Type)),
			File: storage.FileConfig{
				Path: stringSetting(cmd, flagDataFile, "TEAMDATES_DATA_FILE", fc.Storage.File.Path),
			},
			Redis: storage.RedisConfig{
				Addr:     stringSetting(cmd, flagRedisAddr, "REDIS_ADDR", fc.Storage.Redis.Addr),
				Password: stringSetting(cmd, flagRedisPassword, "REDIS_PASSWORD", fc.Storage.Redis.Password),
				DB:       redisDB,
				Key:      stringSetting(cmd, flagRedisKey, "REDIS_KEY", fc.Storage.Redis.Key),
			},
		},
		LogLevel:  stringSetting(cmd, flagLogLevel, "LOG_LEVEL", fc.Log.Level),
		LogFormat: stringSetting(cmd, flagLogFormat, "LOG_FORMAT", fc.Log.Format),
	}, nil
}

// readConfigFile decodes a YAML config file, expanding ${VAR} references.
func readConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

func stringSetting(cmd *cobra.Command, flag, env, fromFile string) string {
	f := cmd.Flags().Lookup(flag)
	if f != nil && f.Changed {
		return f.Value.String()
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	if fromFile != "" {
		return fromFile
	}
	if f != nil {
		return f.DefValue
	}
	return ""
}

func intSetting(cmd *cobra.Command, flag, env string, fromFile *int) (int, error) {
	f := cmd.Flags().Lookup(flag)
	if f != nil && f.Changed {
		return strconv.Atoi(f.Value.String())
	}
	if v := os.Getenv(env); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", env, v, err)
		}
		return n, nil
	}
	if fromFile != nil {
		return *fromFile, nil
	}
	if f != nil {
		return strconv.Atoi(f.DefValue)
	}
	return 0, nil
}

// newLogger writes to stderr so stdout stays free for command output and
// the stdio MCP transport.
func (s *Settings) newLogger() (*slog.Logger, error) {
	return logging.NewLogger(os.Stderr, s.LogLevel, s.LogFormat)
}

// openStore builds the configured backend and a Store over it.
func (s *Settings) openStore(logger *slog.Logger, metrics *instrumentation.Metrics) (*availability.Store, error) {
	backend, err := storage.New(s.Storage, logging.NewSlogAdapter(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}

	store, err := availability.NewStore(availability.Config{
		Backend: backend,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create availability store: %w", err)
	}
	return store, nil
}

// openCLIStore is the common setup of the non-server subcommands.
func openCLIStore(cmd *cobra.Command) (*availability.Store, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := settings.newLogger()
	if err != nil {
		return nil, err
	}
	return settings.openStore(logger, nil)
}
