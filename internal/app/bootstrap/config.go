package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string
	HTTPPort  int
	GRPCPort  int

	ResolvePerMinute  int
	DownloadPerMinute int
	LimitWindowSecs   int

	CacheTTLMinutes int
	CacheMaxEntries int

	PythonBin              string
	InfoScript             string
	DownloadScript         string
	InfoTimeoutSeconds     int
	DownloadTimeoutMinutes int

	StorageRoot string

	APIKey               string
	MirrorURL            string
	ScrapeTimeoutSeconds int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Limits struct {
		ResolvePerMinute  int `yaml:"resolve_per_minute"`
		DownloadPerMinute int `yaml:"download_per_minute"`
		WindowSeconds     int `yaml:"window_seconds"`
	} `yaml:"limits"`
	Cache struct {
		TTLMinutes int `yaml:"ttl_minutes"`
		MaxEntries int `yaml:"max_entries"`
	} `yaml:"cache"`
	Worker struct {
		PythonBin              string `yaml:"python_bin"`
		InfoScript             string `yaml:"info_script"`
		DownloadScript         string `yaml:"download_script"`
		InfoTimeoutSeconds     int    `yaml:"info_timeout_seconds"`
		DownloadTimeoutMinutes int    `yaml:"download_timeout_minutes"`
	} `yaml:"worker"`
	Storage struct {
		Root string `yaml:"root"`
	} `yaml:"storage"`
	Strategies struct {
		APIKey               string `yaml:"api_key"`
		MirrorURL            string `yaml:"mirror_url"`
		ScrapeTimeoutSeconds int    `yaml:"scrape_timeout_seconds"`
	} `yaml:"strategies"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:              "tubefetch",
		HTTPPort:               8080,
		GRPCPort:               9090,
		ResolvePerMinute:       30,
		DownloadPerMinute:      10,
		LimitWindowSecs:        60,
		CacheTTLMinutes:        5,
		CacheMaxEntries:        1024,
		PythonBin:              "python3",
		InfoScript:             "scripts/get_video_info.py",
		DownloadScript:         "scripts/download_video.py",
		InfoTimeoutSeconds:     60,
		DownloadTimeoutMinutes: 10,
		StorageRoot:            "./data/artifacts",
		ScrapeTimeoutSeconds:   8,
	}
	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Limits.ResolvePerMinute > 0 {
			cfg.ResolvePerMinute = f.Limits.ResolvePerMinute
		}
		if f.Limits.DownloadPerMinute > 0 {
			cfg.DownloadPerMinute = f.Limits.DownloadPerMinute
		}
		if f.Limits.WindowSeconds > 0 {
			cfg.LimitWindowSecs = f.Limits.WindowSeconds
		}
		if f.Cache.TTLMinutes > 0 {
			cfg.CacheTTLMinutes = f.Cache.TTLMinutes
		}
		if f.Cache.MaxEntries > 0 {
			cfg.CacheMaxEntries = f.Cache.MaxEntries
		}
		if f.Worker.PythonBin != "" {
			cfg.PythonBin = f.Worker.PythonBin
		}
		if f.Worker.InfoScript != "" {
			cfg.InfoScript = f.Worker.InfoScript
		}
		if f.Worker.DownloadScript != "" {
			cfg.DownloadScript = f.Worker.DownloadScript
		}
		if f.Worker.InfoTimeoutSeconds > 0 {
			cfg.InfoTimeoutSeconds = f.Worker.InfoTimeoutSeconds
		}
		if f.Worker.DownloadTimeoutMinutes > 0 {
			cfg.DownloadTimeoutMinutes = f.Worker.DownloadTimeoutMinutes
		}
		if f.Storage.Root != "" {
			cfg.StorageRoot = f.Storage.Root
		}
		if f.Strategies.APIKey != "" {
			cfg.APIKey = f.Strategies.APIKey
		}
		if f.Strategies.MirrorURL != "" {
			cfg.MirrorURL = f.Strategies.MirrorURL
		}
		if f.Strategies.ScrapeTimeoutSeconds > 0 {
			cfg.ScrapeTimeoutSeconds = f.Strategies.ScrapeTimeoutSeconds
		}
		if f.Redis.Addr != "" {
			cfg.RedisAddr = f.Redis.Addr
		}
		if f.Redis.Password != "" {
			cfg.RedisPassword = f.Redis.Password
		}
		if f.Redis.DB > 0 {
			cfg.RedisDB = f.Redis.DB
		}
	}
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.ResolvePerMinute = envInt("RESOLVE_PER_MINUTE", cfg.ResolvePerMinute)
	cfg.DownloadPerMinute = envInt("DOWNLOAD_PER_MINUTE", cfg.DownloadPerMinute)
	cfg.LimitWindowSecs = envInt("LIMIT_WINDOW_SECONDS", cfg.LimitWindowSecs)
	cfg.CacheTTLMinutes = envInt("CACHE_TTL_MINUTES", cfg.CacheTTLMinutes)
	cfg.CacheMaxEntries = envInt("CACHE_MAX_ENTRIES", cfg.CacheMaxEntries)
	cfg.PythonBin = envOrDefault("WORKER_PYTHON_BIN", cfg.PythonBin)
	cfg.InfoScript = envOrDefault("WORKER_INFO_SCRIPT", cfg.InfoScript)
	cfg.DownloadScript = envOrDefault("WORKER_DOWNLOAD_SCRIPT", cfg.DownloadScript)
	cfg.InfoTimeoutSeconds = envInt("WORKER_INFO_TIMEOUT_SECONDS", cfg.InfoTimeoutSeconds)
	cfg.DownloadTimeoutMinutes = envInt("DOWNLOAD_TIMEOUT_MINUTES", cfg.DownloadTimeoutMinutes)
	cfg.StorageRoot = envOrDefault("STORAGE_ROOT", cfg.StorageRoot)
	cfg.APIKey = envOrDefault("YOUTUBE_API_KEY", cfg.APIKey)
	cfg.MirrorURL = envOrDefault("MIRROR_URL", cfg.MirrorURL)
	cfg.ScrapeTimeoutSeconds = envInt("SCRAPE_TIMEOUT_SECONDS", cfg.ScrapeTimeoutSeconds)
	cfg.RedisAddr = envOrDefault("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = envOrDefault("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = envInt("REDIS_DB", cfg.RedisDB)
	return cfg, nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func (c Config) LimitWindow() time.Duration {
	return time.Duration(c.LimitWindowSecs) * time.Second
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

func (c Config) InfoTimeout() time.Duration {
	return time.Duration(c.InfoTimeoutSeconds) * time.Second
}

func (c Config) DownloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeoutMinutes) * time.Minute
}

func (c Config) ScrapeTimeout() time.Duration {
	return time.Duration(c.ScrapeTimeoutSeconds) * time.Second
}
