package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret       string `mapstructure:"jwtsecret"`
		TokenTTLMinutes int    `mapstructure:"tokenttlminutes"`
	}
	Invite struct {
		TTLHours int `mapstructure:"ttlhours"`
	}
	Vote struct {
		TTLHours            int `mapstructure:"ttlhours"`
		CleanupDelayMinutes int `mapstructure:"cleanupdelayminutes"`
	}
	Janitor struct {
		SweepInterval time.Duration `mapstructure:"sweepinterval"`
	}
	Frontend struct {
		URL string
	}
	Storage struct {
		Bucket    string
		KeyPrefix string `mapstructure:"keyprefix"`
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
}

// TokenTTL returns the access token lifetime.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

// InviteTTL returns how long invite codes stay redeemable.
func (c Config) InviteTTL() time.Duration {
	return time.Duration(c.Invite.TTLHours) * time.Hour
}

// VoteTTL returns how long a vote stays open before expiring.
func (c Config) VoteTTL() time.Duration {
	return time.Duration(c.Vote.TTLHours) * time.Hour
}

// CleanupDelay returns how long closed votes are retained before deletion.
func (c Config) CleanupDelay() time.Duration {
	return time.Duration(c.Vote.CleanupDelayMinutes) * time.Minute
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("SPOTCIRCLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("database.path", "data/spotcircle.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 7*24*60)
	v.SetDefault("invite.ttlhours", 5)
	v.SetDefault("vote.ttlhours", 24)
	v.SetDefault("vote.cleanupdelayminutes", 60)
	v.SetDefault("janitor.sweepinterval", 10*time.Minute)
	v.SetDefault("frontend.url", "http://localhost:3000")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "spotcircle")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("auth.jwtsecret is required")
	}

	return cfg, nil
}

func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		partsIndex := strings.Index(line, "=")
		if partsIndex <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:partsIndex])
		value := strings.TrimSpace(line[partsIndex+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
