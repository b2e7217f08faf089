package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/zhurnal/internal/billing"
)

const insecureSecretKey = "replace-me"

type GSheetConfig struct {
	SheetID         string `toml:"sheet_id"`
	SheetName       string `toml:"sheet_name"`
	CredentialsPath string `toml:"credentials_path"`
	Schedule        string `toml:"schedule"`
	StartRow        int    `toml:"start_row"`
	TimestampRange  string `toml:"timestamp_range"`
}

type Config struct {
	Server struct {
		Port      string `toml:"port"`
		SecretKey string `toml:"secret_key"`
		DataDir   string `toml:"data_dir"`
	} `toml:"server"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Sessions struct {
		RedisURL    string `toml:"redis_url"`
		KeyTemplate string `toml:"key_template"`
		CookieName  string `toml:"cookie_name"`
		TTLHours    int    `toml:"ttl_hours"`
	} `toml:"sessions"`

	Billing struct {
		Price int `toml:"price"`
	} `toml:"billing"`

	Seed struct {
		Enabled         bool   `toml:"enabled"`
		TeacherEmail    string `toml:"teacher_email"`
		TeacherPassword string `toml:"teacher_password"`
	} `toml:"seed"`

	Bot struct {
		Token    string  `toml:"token"`
		AdminIDs []int64 `toml:"admin_ids"`
	} `toml:"bot"`

	GSheet        []GSheetConfig `toml:"gsheet"`
	EmojiVariants []string       `toml:"emoji_variants"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :5000")
	}
	if config.Billing.Price <= 0 {
		return nil, fmt.Errorf("billing price must be positive, got %d", config.Billing.Price)
	}
	if config.Server.SecretKey == insecureSecretKey {
		logger.Info.Println("WARNING: server.secret_key is the default one, sessions can be forged")
	}

	logger.Debug.Printf("Loaded billing config: %+v", config.Billing)

	return config, nil
}

// DefaultConfig is what LoadConfig starts from before reading the file.
func DefaultConfig() *Config {
	var config Config
	config.Server.SecretKey = insecureSecretKey
	config.Server.DataDir = "/data"
	config.Database.DSN = "file:/data/app.db"
	config.Database.MigrationsDir = "./migrations"
	config.Sessions.RedisURL = "redis://localhost:6379/0"
	config.Sessions.KeyTemplate = "session:{sid}"
	config.Sessions.CookieName = "zhurnal_session"
	config.Sessions.TTLHours = 24 * 30
	config.Billing.Price = billing.DefaultPrice
	config.Seed.Enabled = true
	config.Seed.TeacherEmail = "teacher@example.com"
	config.Seed.TeacherPassword = "secret"
	config.EmojiVariants = []string{"🎸", "🎹", "🎻", "🥁"}
	return &config
}
