// Package config loads forgemods settings from an optional TOML file.
//
// Values are layered: built-in defaults, then the file, then environment
// variables. Command-line flags are applied on top by the cmd package.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/tanq16/forgemods/internal/downloaders/curseforge"
	"github.com/tanq16/forgemods/internal/downloaders/modrinth"
	"github.com/tanq16/forgemods/internal/utils"
)

const DefaultPath = "forgemods.toml"

// Download contains settings for the job dispatcher.
type Download struct {
	Dir                string `toml:"dir"`
	Workers            int    `toml:"workers"`
	DefaultGameVersion string `toml:"default_game_version"`
}

// HTTP contains transport settings shared by both providers.
type HTTP struct {
	Timeout      Duration          `toml:"timeout"`
	APITimeout   Duration          `toml:"api_timeout"`
	StallTimeout Duration          `toml:"stall_timeout"`
	UserAgent    string            `toml:"user_agent"`
	Proxy        string            `toml:"proxy"`
	Headers      map[string]string `toml:"headers"`
}

// Modrinth contains settings for the primary provider.
type Modrinth struct {
	BaseURL string `toml:"base_url"`
	Loader  string `toml:"loader"`
}

// CurseForge contains settings for the secondary provider.
type CurseForge struct {
	BaseURL       string `toml:"base_url"`
	APIKey        string `toml:"api_key"`
	GameID        int    `toml:"game_id"`
	ClassID       int    `toml:"class_id"`
	ModLoaderType int    `toml:"mod_loader_type"`
}

type Config struct {
	Download   Download   `toml:"download"`
	HTTP       HTTP       `toml:"http"`
	Modrinth   Modrinth   `toml:"modrinth"`
	CurseForge CurseForge `toml:"curseforge"`
}

// Duration reads TOML strings such as "10s" or "3m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Default() Config {
	return Config{
		Download: Download{
			Dir:                utils.DefaultDownloadDir,
			Workers:            utils.DefaultWorkers,
			DefaultGameVersion: utils.DefaultGameVersion,
		},
		HTTP: HTTP{
			Timeout:      Duration{utils.DefaultClientTimeout},
			APITimeout:   Duration{utils.DefaultAPITimeout},
			StallTimeout: Duration{utils.DefaultStallTimeout},
			UserAgent:    utils.ToolUserAgent,
			Headers:      map[string]string{},
		},
		Modrinth: Modrinth{
			BaseURL: modrinth.DefaultBaseURL,
			Loader:  modrinth.DefaultLoader,
		},
		CurseForge: CurseForge{
			BaseURL:       curseforge.DefaultBaseURL,
			GameID:        curseforge.MinecraftGameID,
			ClassID:       curseforge.ModsClassID,
			ModLoaderType: curseforge.ForgeModLoaderType,
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error when
// path is the default location; exists reports whether a file was read.
func Load(path string) (cfg Config, exists bool, err error) {
	cfg = Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		exists = true
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, true, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, false, fmt.Errorf("read config %s: %w", path, err)
	}
	if key := strings.TrimSpace(os.Getenv(curseforge.APIKeyEnvironmentVar)); key != "" {
		cfg.CurseForge.APIKey = key
	}
	return cfg, exists, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Download.Workers < 1 {
		errs = append(errs, fmt.Errorf("download.workers must be at least 1, got %d", c.Download.Workers))
	}
	if strings.TrimSpace(c.Download.Dir) == "" {
		errs = append(errs, errors.New("download.dir must not be empty"))
	}
	if strings.TrimSpace(c.Download.DefaultGameVersion) == "" {
		errs = append(errs, errors.New("download.default_game_version must not be empty"))
	}
	for name, d := range map[string]Duration{
		"http.timeout":       c.HTTP.Timeout,
		"http.api_timeout":   c.HTTP.APITimeout,
		"http.stall_timeout": c.HTTP.StallTimeout,
	} {
		if d.Duration <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.Modrinth.BaseURL == "" || c.CurseForge.BaseURL == "" {
		errs = append(errs, errors.New("provider base_url must not be empty"))
	}
	return errors.Join(errs...)
}

// HTTPClientConfig builds the transport settings for one provider client.
func (c Config) HTTPClientConfig() utils.HTTPClientConfig {
	return utils.HTTPClientConfig{
		Timeout:      c.HTTP.Timeout.Duration,
		APITimeout:   c.HTTP.APITimeout.Duration,
		StallTimeout: c.HTTP.StallTimeout.Duration,
		ProxyURL:     c.HTTP.Proxy,
		UserAgent:    c.HTTP.UserAgent,
		Headers:      c.HTTP.Headers,
	}
}

func (c Config) ModrinthConfig() modrinth.Config {
	return modrinth.Config{BaseURL: c.Modrinth.BaseURL, Loader: c.Modrinth.Loader}
}

func (c Config) CurseForgeConfig() curseforge.Config {
	return curseforge.Config{
		BaseURL:       c.CurseForge.BaseURL,
		APIKey:        c.CurseForge.APIKey,
		GameID:        c.CurseForge.GameID,
		ClassID:       c.CurseForge.ClassID,
		ModLoaderType: c.CurseForge.ModLoaderType,
	}
}
