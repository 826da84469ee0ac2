package modrinth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/tanq16/forgemods/internal/utils"
)

type searchResponse struct {
	Hits []searchHit `json:"hits"`
}

type searchHit struct {
	ProjectID string `json:"project_id"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
}

type projectVersion struct {
	ID            string        `json:"id"`
	VersionNumber string        `json:"version_number"`
	Files         []versionFile `json:"files"`
}

type versionFile struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Primary  bool   `json:"primary"`
	Size     int64  `json:"size"`
}

func searchProjects(ctx context.Context, client *utils.ModHTTPClient, base, name, loader, gameVersion string) ([]searchHit, error) {
	facets := fmt.Sprintf(`[["categories:%s"],["versions:%s"]]`, loader, gameVersion)
	params := url.Values{}
	params.Set("query", name)
	params.Set("facets", facets)
	var resp searchResponse
	if err := client.GetJSON(ctx, "modrinth search", base+"/search", params, &resp); err != nil {
		return nil, err
	}
	return resp.Hits, nil
}

func listVersions(ctx context.Context, client *utils.ModHTTPClient, base, projectID, loader, gameVersion string) ([]projectVersion, error) {
	loaders, _ := json.Marshal([]string{loader})
	gameVersions, _ := json.Marshal([]string{gameVersion})
	params := url.Values{}
	params.Set("loaders", string(loaders))
	params.Set("game_versions", string(gameVersions))
	endpoint := fmt.Sprintf("%s/project/%s/version", base, url.PathEscape(projectID))
	var versions []projectVersion
	if err := client.GetJSON(ctx, "modrinth versions", endpoint, params, &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

// selectFile prefers the first file flagged primary in any version, then the
// first file of the first version.
func selectFile(versions []projectVersion) (versionFile, bool) {
	for _, v := range versions {
		for _, f := range v.Files {
			if f.Primary {
				return f, true
			}
		}
	}
	if len(versions) == 0 || len(versions[0].Files) == 0 {
		return versionFile{}, false
	}
	return versions[0].Files[0], true
}
