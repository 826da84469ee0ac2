// Package modrinth resolves mods against the Modrinth v2 API.
package modrinth

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	modhttp "github.com/tanq16/forgemods/internal/downloaders/http"
	"github.com/tanq16/forgemods/internal/utils"
)

const Name = "Modrinth"

const DefaultBaseURL = "https://api.modrinth.com/v2"
const DefaultLoader = "forge"

type Config struct {
	BaseURL string
	Loader  string
}

type Downloader struct {
	cfg    Config
	client *utils.ModHTTPClient
}

func New(cfg Config, client *utils.ModHTTPClient) *Downloader {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Loader == "" {
		cfg.Loader = DefaultLoader
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &Downloader{cfg: cfg, client: client}
}

func (d *Downloader) Name() string {
	return Name
}

func (d *Downloader) Resolve(ctx context.Context, mod utils.ModDescriptor, gameVersion string) (utils.FileRef, error) {
	hits, err := searchProjects(ctx, d.client, d.cfg.BaseURL, mod.Name, d.cfg.Loader, gameVersion)
	if err != nil {
		return utils.FileRef{}, err
	}
	if len(hits) == 0 {
		return utils.FileRef{}, utils.NotFoundf("no project matches %q for %s", mod.Name, gameVersion)
	}
	projectID := hits[0].ProjectID
	log.Debug().Str("op", "modrinth/resolve").Msgf("Matched %q to project %s (%s)", mod.Name, projectID, hits[0].Slug)

	versions, err := listVersions(ctx, d.client, d.cfg.BaseURL, projectID, d.cfg.Loader, gameVersion)
	if err != nil {
		return utils.FileRef{}, err
	}
	if len(versions) == 0 {
		return utils.FileRef{}, utils.NotFoundf("no %s version of %q for %s", d.cfg.Loader, mod.Name, gameVersion)
	}
	file, ok := selectFile(versions)
	if !ok || file.URL == "" {
		return utils.FileRef{}, utils.NotFoundf("no downloadable file for %q", mod.Name)
	}
	return utils.FileRef{
		Provider: Name,
		FileName: file.Filename,
		URL:      file.URL,
		Size:     file.Size,
	}, nil
}

func (d *Downloader) Fetch(ctx context.Context, ref utils.FileRef, targetPath string) error {
	_, err := modhttp.PerformSimpleDownload(ctx, ref.URL, targetPath, d.client)
	return err
}
