package curseforge

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tanq16/forgemods/internal/utils"
)

type searchResponse struct {
	Data []modInfo `json:"data"`
}

type modInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type filesResponse struct {
	Data []modFile `json:"data"`
}

type modFile struct {
	ID          int    `json:"id"`
	FileName    string `json:"fileName"`
	DownloadURL string `json:"downloadUrl"`
	FileLength  int64  `json:"fileLength"`
}

func searchMods(ctx context.Context, client *utils.ModHTTPClient, cfg Config, name string) ([]modInfo, error) {
	params := url.Values{}
	params.Set("gameId", strconv.Itoa(cfg.GameID))
	params.Set("searchFilter", name)
	params.Set("classId", strconv.Itoa(cfg.ClassID))
	var resp searchResponse
	if err := client.GetJSON(ctx, "curseforge search", cfg.BaseURL+"/mods/search", params, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func listFiles(ctx context.Context, client *utils.ModHTTPClient, cfg Config, modID int, gameVersion string) ([]modFile, error) {
	params := url.Values{}
	params.Set("gameVersion", gameVersion)
	params.Set("modLoaderType", strconv.Itoa(cfg.ModLoaderType))
	endpoint := fmt.Sprintf("%s/mods/%d/files", cfg.BaseURL, modID)
	var resp filesResponse
	if err := client.GetJSON(ctx, "curseforge files", endpoint, params, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// selectFile prefers an exact filename match and falls back to the first file.
func selectFile(files []modFile, filename string) (modFile, bool) {
	if len(files) == 0 {
		return modFile{}, false
	}
	for _, f := range files {
		if f.FileName == filename {
			return f, true
		}
	}
	return files[0], true
}
