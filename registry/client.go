package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultRegistryURL is the official canonizer registry.
const DefaultRegistryURL = "https://raw.githubusercontent.com/benthepsychologist/canonizer-registry/main/"

// IndexFilename is the registry index document at the registry base.
const IndexFilename = "REGISTRY_INDEX.json"

// LatestVersion is the symbolic version resolved against the registry
// index to the newest published version.
const LatestVersion = "latest"

// Client fetches registry files over HTTP with an on-disk cache.
//
// Cached files live under cacheDir/<8 hex chars of sha256(baseURL)>/ so
// that different registries sharing one cache directory never collide.
// Client implements Fetcher.
type Client struct {
	baseURL  string
	client   *http.Client
	cacheDir string

	index *Index // memoized after the first fetch
}

// NewClient creates a registry client. An empty baseURL selects the
// official registry; an empty cacheDir selects the per-user cache
// directory (~/.cache/canonizer/registry on Linux).
func NewClient(baseURL, cacheDir string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultRegistryURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if cacheDir == "" {
		userCache, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("locate cache directory: %w", err)
		}
		cacheDir = filepath.Join(userCache, "canonizer", "registry")
	}

	transport := &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		baseURL:  baseURL,
		cacheDir: cacheDir,
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}, nil
}

// BaseURL returns the registry base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Fetch retrieves a registry-relative file, serving from the cache when
// present and populating it otherwise.
func (c *Client) Fetch(ctx context.Context, relPath string) ([]byte, error) {
	cachePath := c.cachePath(relPath)
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, nil
	}
	return c.fetchFresh(ctx, relPath)
}

// FetchFresh retrieves a registry-relative file from the network,
// bypassing and refreshing the cache.
func (c *Client) FetchFresh(ctx context.Context, relPath string) ([]byte, error) {
	return c.fetchFresh(ctx, relPath)
}

func (c *Client) fetchFresh(ctx context.Context, relPath string) ([]byte, error) {
	fileURL, err := url.JoinPath(c.baseURL, relPath)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &NotFoundError{Kind: KindArtifact, Path: fileURL}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned status %d for %s", resp.StatusCode, fileURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	cachePath := c.cachePath(relPath)
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err == nil {
		// Cache writes are best-effort; a failed write only costs a refetch.
		_ = os.WriteFile(cachePath, data, 0o644)
	}
	return data, nil
}

// cachePath maps a registry-relative path into this registry's cache
// subtree.
func (c *Client) cachePath(relPath string) string {
	sum := sha256.Sum256([]byte(c.baseURL))
	urlHash := hex.EncodeToString(sum[:])[:8]
	return filepath.Join(c.cacheDir, urlHash, filepath.FromSlash(relPath))
}

// ClearCache removes every cached file for this registry.
func (c *Client) ClearCache() error {
	sum := sha256.Sum256([]byte(c.baseURL))
	urlHash := hex.EncodeToString(sum[:])[:8]
	c.index = nil
	return os.RemoveAll(filepath.Join(c.cacheDir, urlHash))
}

// Index is the registry index document.
type Index struct {
	Transforms []IndexTransform `json:"transforms"`
	Schemas    []IndexSchema    `json:"schemas"`
}

// IndexTransform is one transform listing, versions sorted latest-first.
type IndexTransform struct {
	ID       string         `json:"id"`
	Versions []IndexVersion `json:"versions"`
}

// IndexVersion is one available version of a transform.
type IndexVersion struct {
	Version string `json:"version"`
}

// IndexSchema is one schema listing.
type IndexSchema struct {
	URI  string `json:"uri"`
	Path string `json:"path"`
}

// FetchIndex retrieves and parses a registry's index from any Fetcher.
func FetchIndex(ctx context.Context, f Fetcher) (*Index, error) {
	data, err := f.Fetch(ctx, IndexFilename)
	if err != nil {
		return nil, err
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse registry index: %w", err)
	}
	return &idx, nil
}

// Resolve resolves a transform version against the index. LatestVersion
// selects the first listed version; anything else must match exactly. An
// unknown transform or version is a *NotFoundError.
func (idx *Index) Resolve(transformID, version string) (string, error) {
	for _, t := range idx.Transforms {
		if t.ID != transformID {
			continue
		}
		if len(t.Versions) == 0 {
			break
		}
		if version == LatestVersion {
			return t.Versions[0].Version, nil
		}
		for _, v := range t.Versions {
			if v.Version == version {
				return v.Version, nil
			}
		}
		break
	}

	return "", &NotFoundError{
		Kind: KindTransform,
		Ref:  transformID + "@" + version,
		Hint: "check available versions in " + IndexFilename,
	}
}

// ResolveVersion resolves a transform version against the registry named
// by f, fetching its index. Clients memoize the index across calls.
func ResolveVersion(ctx context.Context, f Fetcher, transformID, version string) (string, error) {
	if c, ok := f.(*Client); ok {
		return c.ResolveVersion(ctx, transformID, version)
	}
	idx, err := FetchIndex(ctx, f)
	if err != nil {
		return "", err
	}
	return idx.Resolve(transformID, version)
}

// FetchIndex retrieves and memoizes the registry index.
func (c *Client) FetchIndex(ctx context.Context) (*Index, error) {
	if c.index != nil {
		return c.index, nil
	}
	idx, err := FetchIndex(ctx, Fetcher(c))
	if err != nil {
		return nil, err
	}
	c.index = idx
	return c.index, nil
}

// ResolveVersion resolves a transform version against this registry's
// index.
func (c *Client) ResolveVersion(ctx context.Context, transformID, version string) (string, error) {
	idx, err := c.FetchIndex(ctx)
	if err != nil {
		return "", err
	}
	return idx.Resolve(transformID, version)
}
