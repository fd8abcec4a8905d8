package imageurl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"catalog.GO/core/cache"
	"catalog.GO/core/logger"
)

// DriveFilesEndpoint is the Google Drive v3 files listing.
const DriveFilesEndpoint = "https://www.googleapis.com/drive/v3/files"

const driveFolderCacheTag = "drive-folder"

// DriveFolder maps file names in a shared Drive folder to direct-view URLs.
// The name index is listed once per (folder, API key) and kept in the
// supplied cache; failed listings are not cached.
type DriveFolder struct {
	FolderID string
	APIKey   string
	// Endpoint overrides DriveFilesEndpoint.
	Endpoint string
	// TTL of the cached index in seconds; 0 keeps it for the process lifetime.
	TTL int64

	client *http.Client
	cache  *cache.Cache
	log    logger.Logger
	group  singleflight.Group
}

// NewDriveFolder returns nil when folderID or apiKey is blank, which
// FolderRule treats as disabled.
func NewDriveFolder(folderID, apiKey string, c *cache.Cache, client *http.Client, log logger.Logger) *DriveFolder {
	folderID, apiKey = strings.TrimSpace(folderID), strings.TrimSpace(apiKey)
	if folderID == "" || apiKey == "" {
		return nil
	}
	if c == nil {
		c = cache.NewCache()
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &DriveFolder{FolderID: folderID, APIKey: apiKey, client: client, cache: c, log: log}
}

// Resolve returns the view URL for name, or name trimmed when the folder has
// no such file or cannot be listed.
func (d *DriveFolder) Resolve(ctx context.Context, name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	index, err := d.Index(ctx)
	if err != nil {
		return trimmed
	}
	id, ok := index[strings.ToLower(trimmed)]
	if !ok {
		d.log.Warn("Drive folder has no file with this name",
			logger.String("folder", d.FolderID), logger.String("name", trimmed))
		return trimmed
	}
	return DriveViewURL(id)
}

// Index returns the lower-cased name to file id map, listing the folder on
// first use.
func (d *DriveFolder) Index(ctx context.Context) (map[string]string, error) {
	if v, ok := d.cache.GetN(driveFolderCacheTag, d.FolderID, d.APIKey); ok {
		return v.(map[string]string), nil
	}
	v, err, _ := d.group.Do(d.FolderID+"::"+d.APIKey, func() (interface{}, error) {
		index, err := d.list(ctx)
		if err != nil {
			d.log.Error("Failed to list Drive folder", logger.String("folder", d.FolderID), logger.Error(err))
			return nil, err
		}
		if len(index) == 0 {
			d.log.Warn("Drive folder is empty", logger.String("folder", d.FolderID))
		}
		d.cache.SetN([]interface{}{driveFolderCacheTag, d.FolderID, d.APIKey}, index, d.TTL, []string{driveFolderCacheTag})
		return index, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]string), nil
}

type driveFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type driveFilesResponse struct {
	Files         []driveFile `json:"files"`
	NextPageToken string      `json:"nextPageToken"`
	Error         *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (d *DriveFolder) list(ctx context.Context) (map[string]string, error) {
	index := make(map[string]string)
	pageToken := ""
	for {
		page, err := d.fetchPage(ctx, pageToken)
		if err != nil {
			return nil, err
		}
		for _, f := range page.Files {
			id, name := strings.TrimSpace(f.ID), strings.ToLower(strings.TrimSpace(f.Name))
			if id == "" || name == "" {
				continue
			}
			if _, seen := index[name]; !seen {
				index[name] = id
			}
			if dot := strings.LastIndex(name, "."); dot > 0 {
				if _, seen := index[name[:dot]]; !seen {
					index[name[:dot]] = id
				}
			}
		}
		if page.NextPageToken == "" {
			return index, nil
		}
		pageToken = page.NextPageToken
	}
}

func (d *DriveFolder) fetchPage(ctx context.Context, pageToken string) (*driveFilesResponse, error) {
	endpoint := d.Endpoint
	if endpoint == "" {
		endpoint = DriveFilesEndpoint
	}
	q := url.Values{}
	q.Set("q", fmt.Sprintf("'%s' in parents and trashed = false", d.FolderID))
	q.Set("fields", "nextPageToken, files(id, name)")
	q.Set("pageSize", "1000")
	q.Set("key", d.APIKey)
	q.Set("includeItemsFromAllDrives", "false")
	q.Set("supportsAllDrives", "false")
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("drive files request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("drive files: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("drive files: status %d", resp.StatusCode)
	}
	var body driveFilesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode drive files: %w", err)
	}
	if body.Error != nil && body.Error.Message != "" {
		return nil, fmt.Errorf("drive files: %s", body.Error.Message)
	}
	return &body, nil
}
