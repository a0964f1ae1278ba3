package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const feedBaseURL = "https://www.youtube.com/feeds/videos.xml"

type Config struct {
	Feeds        FeedsConfig      `yaml:"feeds"`
	YouTube      YouTubeConfig    `yaml:"youtube"`
	HTTP         HTTPConfig       `yaml:"http"`
	Monitoring   MonitoringConfig `yaml:"monitoring"`
	Schedule     string           `yaml:"schedule"`
	FetchTimeout time.Duration    `yaml:"fetch_timeout"`
}

// FeedsConfig lists the syndication sources. PlaylistNames is matched to
// PlaylistURLs by position and only used when a feed carries no title.
type FeedsConfig struct {
	ChannelURL    string   `yaml:"channel_url"`
	PlaylistURLs  []string `yaml:"playlist_urls"`
	PlaylistNames []string `yaml:"playlist_names"`
}

// YouTubeConfig enables the optional Data API enrichment. Either key works.
type YouTubeConfig struct {
	APIKey          string `yaml:"api_key" env:"YOUTUBE_API_KEY"`
	CredentialsFile string `yaml:"credentials_file" env:"GOOGLE_APPLICATION_CREDENTIALS"`
}

func (y YouTubeConfig) Enabled() bool {
	return y.APIKey != "" || y.CredentialsFile != ""
}

type HTTPConfig struct {
	Port        int    `yaml:"port" env:"PORT"`
	StaticDir   string `yaml:"static_dir"`
	CacheMaxAge int    `yaml:"cache_max_age"` // seconds, 0 disables Cache-Control
}

type MonitoringConfig struct {
	ProbeEnabled bool `yaml:"probe_enabled"`
}

var defaultPlaylistIDs = []string{
	"PLHbvk4eYO_zZykWyZ1zEF6X9aMbMZ4mRS",
	"PLHbvk4eYO_zYidoI2lbJyTW1oSZyrh-vt",
	"PLHbvk4eYO_zbjcLeC0lUdDsmJteNFKKFQ",
	"PLHbvk4eYO_zZtx2cm8dfBFjC2VObbpH2v",
	"PLHbvk4eYO_zY9Qs8sZpwgtoV7PsSXq_MH",
	"PLHbvk4eYO_zZAQQfBPuKVoZVh2CwvomIB",
	"PLHbvk4eYO_zbZl1OdZbq37nbwgb53Y2gu",
	"PLHbvk4eYO_zbyHJJkfkLm7QwIWgFzSHl5",
	"PLHbvk4eYO_zbh4Ev6bY9iydqFE9J9OFlm",
	"PLHbvk4eYO_zbQC8iKrrXZAT_yg1NtTwu9",
	"PLHbvk4eYO_zYluMG8Kz0zlR8TBSJR0wHr",
	"PLHbvk4eYO_zb0_EiSHKQyybHVtIqaWak1",
	"PLHbvk4eYO_zY66DVsgXTEJFQImV9vPKrx",
	"PLHbvk4eYO_zaU2PVAU7IJAuBWvN8liyDD",
	"PLHbvk4eYO_zYxo3AdBneGO2wVsVCq4qm3",
	"PLHbvk4eYO_zZQUBXpPiB_9eLYQ1WkPROJ",
	"PLHbvk4eYO_zZcLvmsK8ZF6Ydbq-LuvoFW",
	"PLHbvk4eYO_zZ1j5uwMV2zJoOTNQ5KQSe6",
	"PLHbvk4eYO_zYAX79QoJvY2v_9t_R0pMPd",
	"PLHbvk4eYO_zbsb_5YZ4DHNP9EV8qPGpEX",
}

var defaultPlaylistNames = []string{
	"Christmas Collection",
	"Halloween Collection",
	"Easter Showcase",
	"Winter Wonderland",
	"Birthday Projections",
	"Holiday Special",
	"Summer Vibes",
	"New Year Celebration",
	"Thanksgiving Fall",
	"Valentine Special",
	"Santa Workshop",
	"Ghost Stories",
	"Spring Flowers",
	"Autumn Leaves",
	"Party Time",
	"Kids Favorites",
	"Wedding Special",
	"Patriotic Themes",
	"Spooky Season",
	"Festival Lights",
}

// DefaultFeeds returns the channel and playlist sources the site ships with.
func DefaultFeeds() FeedsConfig {
	urls := make([]string, len(defaultPlaylistIDs))
	for i, id := range defaultPlaylistIDs {
		urls[i] = feedBaseURL + "?playlist_id=" + id
	}
	names := make([]string, len(defaultPlaylistNames))
	copy(names, defaultPlaylistNames)

	return FeedsConfig{
		ChannelURL:    feedBaseURL + "?channel_id=UC50vfiAGflBnDv6PD1NNTrw",
		PlaylistURLs:  urls,
		PlaylistNames: names,
	}
}

// Load reads CONFIG_FILE (default config.yaml). A missing file is not an
// error: every setting has a default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if c.YouTube.CredentialsFile == "" {
		c.YouTube.CredentialsFile = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		c.HTTP.Port = p
	}
	return nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultFeeds()
	if c.Feeds.ChannelURL == "" {
		c.Feeds.ChannelURL = defaults.ChannelURL
	}
	if len(c.Feeds.PlaylistURLs) == 0 {
		c.Feeds.PlaylistURLs = defaults.PlaylistURLs
		if len(c.Feeds.PlaylistNames) == 0 {
			c.Feeds.PlaylistNames = defaults.PlaylistNames
		}
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 3000
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 30 * time.Second
	}
	if c.Schedule == "" {
		c.Schedule = "0 */15 * * * *" // every 15 minutes
	}
}

func (c *Config) validate() error {
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.CacheMaxAge < 0 {
		return fmt.Errorf("http cache_max_age cannot be negative")
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetch_timeout cannot be negative")
	}
	for i, u := range c.Feeds.PlaylistURLs {
		if u == "" {
			return fmt.Errorf("playlist url %d is empty", i)
		}
	}
	if c.HTTP.StaticDir != "" {
		info, err := os.Stat(c.HTTP.StaticDir)
		if err != nil {
			return fmt.Errorf("static dir %s: %w", c.HTTP.StaticDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("static dir %s is not a directory", c.HTTP.StaticDir)
		}
	}
	return nil
}
