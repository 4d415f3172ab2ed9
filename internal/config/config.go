package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths    PathsConfig    `mapstructure:"paths"`
	Training TrainingConfig `mapstructure:"training"`
	Server   ServerConfig   `mapstructure:"server"`
	LogLevel string         `mapstructure:"log_level"`
}

type PathsConfig struct {
	VocabPath          string `mapstructure:"vocab_path"`
	CorpusPath         string `mapstructure:"corpus_path"`
	ReferenceModelPath string `mapstructure:"reference_model_path"`
}

type TrainingConfig struct {
	VocabSize int    `mapstructure:"vocab_size"`
	MinFreq   int    `mapstructure:"min_freq"`
	Strategy  string `mapstructure:"strategy"`
	BatchSize int    `mapstructure:"batch_size"`
	Workers   int    `mapstructure:"workers"`
}

type ServerConfig struct {
	ListenAddr   string `mapstructure:"listen_addr"`
	MaxTextBytes int    `mapstructure:"max_text_bytes"`
	Workers      int    `mapstructure:"workers"`
	// ShutdownTimeout is in seconds.
	ShutdownTimeout int `mapstructure:"shutdown_timeout"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			VocabPath:          "models/hindi_bpe.json",
			CorpusPath:         "data/hindi_corpus.txt",
			ReferenceModelPath: "models/reference.model",
		},
		Training: TrainingConfig{
			VocabSize: 5000,
			MinFreq:   2,
			Strategy:  StrategyBoosted,
			BatchSize: 10000,
			Workers:   4,
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			MaxTextBytes:    65536,
			Workers:         8,
			ShutdownTimeout: 30,
		},
		LogLevel: "info",
	}
}

// flagKeys maps each flag to the config key it overrides.
var flagKeys = map[string]string{
	"vocab":                   "paths.vocab_path",
	"corpus":                  "paths.corpus_path",
	"reference-model":         "paths.reference_model_path",
	"vocab-size":              "training.vocab_size",
	"min-freq":                "training.min_freq",
	"strategy":                "training.strategy",
	"batch-size":              "training.batch_size",
	"train-workers":           "training.workers",
	"server-listen-addr":      "server.listen_addr",
	"server-max-text-bytes":   "server.max_text_bytes",
	"workers":                 "server.workers",
	"server-shutdown-timeout": "server.shutdown_timeout",
	"log-level":               "log_level",
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("vocab", defaults.Paths.VocabPath, "Path to the vocabulary artifact (.json or .cbor)")
	fs.String("corpus", defaults.Paths.CorpusPath, "Path to the training corpus")
	fs.String("reference-model", defaults.Paths.ReferenceModelPath, "Path to a SentencePiece model for comparison")
	fs.Int("vocab-size", defaults.Training.VocabSize, "Target vocabulary size")
	fs.Int("min-freq", defaults.Training.MinFreq, "Minimum word frequency kept for training")
	fs.String("strategy", defaults.Training.Strategy, "Merge selection strategy (boosted|baseline)")
	fs.Int("batch-size", defaults.Training.BatchSize, "Corpus lines counted per batch")
	fs.Int("train-workers", defaults.Training.Workers, "Concurrent corpus counting batches")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("server-max-text-bytes", defaults.Server.MaxTextBytes, "Maximum request text size in bytes")
	fs.Int("workers", defaults.Server.Workers, "Maximum concurrent encode/decode requests")
	fs.Int("server-shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown drain period in seconds")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("HINDIBPE")
	replacer := strings.NewReplacer("-", "_", ".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("hindibpe")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	strategy, err := NormalizeStrategy(cfg.Training.Strategy)
	if err != nil {
		return Config{}, err
	}
	cfg.Training.Strategy = strategy

	return cfg, nil
}

// bindFlags binds every registered config flag to its key. Only flags set on
// the command line take precedence over env and file values.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.vocab_path", c.Paths.VocabPath)
	v.SetDefault("paths.corpus_path", c.Paths.CorpusPath)
	v.SetDefault("paths.reference_model_path", c.Paths.ReferenceModelPath)
	v.SetDefault("training.vocab_size", c.Training.VocabSize)
	v.SetDefault("training.min_freq", c.Training.MinFreq)
	v.SetDefault("training.strategy", c.Training.Strategy)
	v.SetDefault("training.batch_size", c.Training.BatchSize)
	v.SetDefault("training.workers", c.Training.Workers)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("log_level", c.LogLevel)
}
