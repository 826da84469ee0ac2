// Package curseforge resolves mods against the CurseForge core API.
package curseforge

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	modhttp "github.com/tanq16/forgemods/internal/downloaders/http"
	"github.com/tanq16/forgemods/internal/utils"
)

const Name = "CurseForge"

const (
	DefaultBaseURL       = "https://api.curseforge.com/v1"
	MinecraftGameID      = 432
	ModsClassID          = 6
	ForgeModLoaderType   = 1
	APIKeyHeader         = "x-api-key"
	APIKeyEnvironmentVar = "CURSEFORGE_API_KEY"
)

type Config struct {
	BaseURL       string
	APIKey        string
	GameID        int
	ClassID       int
	ModLoaderType int
}

type Downloader struct {
	cfg    Config
	client *utils.ModHTTPClient
}

// New sets the API key on client, so the same headers go out on API calls
// and file downloads.
func New(cfg Config, client *utils.ModHTTPClient) *Downloader {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.GameID == 0 {
		cfg.GameID = MinecraftGameID
	}
	if cfg.ClassID == 0 {
		cfg.ClassID = ModsClassID
	}
	if cfg.ModLoaderType == 0 {
		cfg.ModLoaderType = ForgeModLoaderType
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	client.SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader(APIKeyHeader, cfg.APIKey)
	}
	return &Downloader{cfg: cfg, client: client}
}

func (d *Downloader) Name() string {
	return Name
}

func (d *Downloader) Resolve(ctx context.Context, mod utils.ModDescriptor, gameVersion string) (utils.FileRef, error) {
	results, err := searchMods(ctx, d.client, d.cfg, mod.Name)
	if err != nil {
		return utils.FileRef{}, err
	}
	if len(results) == 0 {
		return utils.FileRef{}, utils.NotFoundf("no mod matches %q", mod.Name)
	}
	modID := results[0].ID
	log.Debug().Str("op", "curseforge/resolve").Msgf("Matched %q to mod %d (%s)", mod.Name, modID, results[0].Slug)

	files, err := listFiles(ctx, d.client, d.cfg, modID, gameVersion)
	if err != nil {
		return utils.FileRef{}, err
	}
	file, ok := selectFile(files, mod.Filename)
	if !ok {
		return utils.FileRef{}, utils.NotFoundf("no file of %q for %s", mod.Name, gameVersion)
	}
	if file.DownloadURL == "" {
		return utils.FileRef{}, utils.NotFoundf("file %s of %q has no download link", file.FileName, mod.Name)
	}
	return utils.FileRef{
		Provider: Name,
		FileName: file.FileName,
		URL:      file.DownloadURL,
		Size:     file.FileLength,
	}, nil
}

func (d *Downloader) Fetch(ctx context.Context, ref utils.FileRef, targetPath string) error {
	_, err := modhttp.PerformSimpleDownload(ctx, ref.URL, targetPath, d.client)
	return err
}
