package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL         string
	WSURL          string
	VoteContract   string
	WindowSize     uint64
	BlockTimeMs    uint64
	Port           int
	StaticDir      string
	ROMURL         string
	SaveDir        string
	FPS            int
	AutosaveEvery  time.Duration
	GameStateEvery time.Duration
	StartupBarrier time.Duration
	Production     bool

	RelayEnabled       bool
	RelayKey           string
	DelegationContract string

	MaxCachedVotes   int
	MaxCachedActions int
	MaxEncodes       int
	JPEGQuality      int

	JournalPath string
	LogLevel    string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MPP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("window-size", uint64(5))
	v.SetDefault("block-time-ms", uint64(400))
	v.SetDefault("port", 3001)
	v.SetDefault("save-dir", "./data/saves")
	v.SetDefault("fps", 60)
	v.SetDefault("autosave-every", 60*time.Second)
	v.SetDefault("gamestate-every", 2*time.Second)
	v.SetDefault("startup-barrier", 5*time.Second)
	v.SetDefault("max-cached-votes", 100)
	v.SetDefault("max-cached-actions", 50)
	v.SetDefault("max-encodes", 8)
	v.SetDefault("jpeg-quality", 75)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:             v.GetString("rpc"),
		WSURL:              v.GetString("ws"),
		VoteContract:       v.GetString("vote-contract"),
		WindowSize:         v.GetUint64("window-size"),
		BlockTimeMs:        v.GetUint64("block-time-ms"),
		Port:               v.GetInt("port"),
		StaticDir:          v.GetString("static-dir"),
		ROMURL:             v.GetString("rom-url"),
		SaveDir:            v.GetString("save-dir"),
		FPS:                v.GetInt("fps"),
		AutosaveEvery:      v.GetDuration("autosave-every"),
		GameStateEvery:     v.GetDuration("gamestate-every"),
		StartupBarrier:     v.GetDuration("startup-barrier"),
		Production:         v.GetBool("production"),
		RelayEnabled:       v.GetBool("relay-enabled"),
		RelayKey:           v.GetString("relay-key"),
		DelegationContract: v.GetString("delegation-contract"),
		MaxCachedVotes:     v.GetInt("max-cached-votes"),
		MaxCachedActions:   v.GetInt("max-cached-actions"),
		MaxEncodes:         v.GetInt("max-encodes"),
		JPEGQuality:        v.GetInt("jpeg-quality"),
		JournalPath:        v.GetString("journal"),
		LogLevel:           v.GetString("log-level"),
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.WindowSize == 0 {
		return fmt.Errorf("window size must be >= 1")
	}
	if c.BlockTimeMs == 0 {
		return fmt.Errorf("block time must be > 0")
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be > 0")
	}
	if c.RelayEnabled {
		if c.RelayKey == "" {
			return fmt.Errorf("relay key is required when the relay is enabled")
		}
		if c.DelegationContract == "" {
			return fmt.Errorf("delegation contract is required when the relay is enabled")
		}
	}
	return nil
}
