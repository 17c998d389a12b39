package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type AppConfig struct {
	BaseURL     string
	TokenPath   string
	CachePath   string
	DownloadDir string
	LogPath     string
	WatchDir    string
}

var cfg AppConfig

func Init() AppConfig {
	dataDir := filepath.Join(os.TempDir(), "swift-transfer")

	v := viper.New()
	v.SetConfigFile("config/config.yaml")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SWIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// defaults
	v.SetDefault("client.base_url", "http://127.0.0.1:8080")
	v.SetDefault("client.token_path", filepath.Join(dataDir, "client.token"))
	v.SetDefault("client.cache_path", filepath.Join(dataDir, "client.db"))
	v.SetDefault("client.download_dir", ".")
	v.SetDefault("client.watch_dir", "")
	_ = v.ReadInConfig()

	cfg = AppConfig{
		BaseURL:     strings.TrimRight(v.GetString("client.base_url"), "/"),
		TokenPath:   v.GetString("client.token_path"),
		CachePath:   v.GetString("client.cache_path"),
		DownloadDir: v.GetString("client.download_dir"),
		LogPath:     v.GetString("client.log_path"),
		WatchDir:    v.GetString("client.watch_dir"),
	}
	return cfg
}

func Get() AppConfig { return cfg }

func TokenFilePath() string {
	if cfg.TokenPath == "" {
		return filepath.Join(os.TempDir(), "swift-transfer", "client.token")
	}
	return cfg.TokenPath
}
