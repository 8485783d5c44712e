package version

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	RepoOwner = "khanglvm"
	RepoName  = "strapd"
	UpdateURL = "https://api.github.com/repos/" + RepoOwner + "/" + RepoName + "/releases/latest"

	// DefaultCacheTTL is how long a release lookup is reused.
	DefaultCacheTTL = 24 * time.Hour
)

// GitHubRelease represents a GitHub release API response.
type GitHubRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// UpdateCache stores update check state.
type UpdateCache struct {
	LastUpdateCheck  time.Time `json:"lastUpdateCheck"`
	LastKnownVersion string    `json:"lastKnownVersion"`
}

// Checker looks up the latest release and reports whether it is newer than
// the running build.
type Checker struct {
	URL       string
	Client    *http.Client
	CachePath string
	CacheTTL  time.Duration
	Current   string

	logger *zap.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// NewChecker returns a Checker for the GitHub releases of strapd, caching
// results in ~/.strapd/update-cache.json.
func NewChecker(logger *zap.Logger) (*Checker, error) {
	cachePath, err := getCachePath()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Checker{
		URL:       UpdateURL,
		Client:    &http.Client{Timeout: 10 * time.Second},
		CachePath: cachePath,
		CacheTTL:  DefaultCacheTTL,
		Current:   Version,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Check returns the latest version if it is newer than Current, or "" when
// up to date. Development builds are never reported as outdated. A cached
// result younger than CacheTTL is used without a network call.
func (c *Checker) Check(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Current == "dev" {
		return "", nil
	}

	cache := c.loadCache()
	if cache.LastKnownVersion != "" && c.now().Sub(cache.LastUpdateCheck) < c.CacheTTL {
		return newerOrEmpty(cache.LastKnownVersion, c.Current), nil
	}

	latest, err := c.fetchLatest(ctx)
	if err != nil {
		return "", err
	}

	cache.LastUpdateCheck = c.now()
	cache.LastKnownVersion = latest
	if err := c.saveCache(cache); err != nil {
		c.logger.Warn("failed to save update cache", zap.String("path", c.CachePath), zap.Error(err))
	}

	return newerOrEmpty(latest, c.Current), nil
}

func (c *Checker) fetchLatest(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to check for updates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var release GitHubRelease
	if err := json.Unmarshal(body, &release); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if release.TagName == "" {
		return "", fmt.Errorf("release has no tag")
	}

	return strings.TrimPrefix(release.TagName, "v"), nil
}

func newerOrEmpty(latest, current string) string {
	if compareVersions(latest, current) > 0 {
		return latest
	}
	return ""
}

// compareVersions compares dotted numeric versions, ignoring a leading "v"
// and any pre-release suffix. Missing segments count as zero.
func compareVersions(a, b string) int {
	pa, pb := versionParts(a), versionParts(b)
	for len(pa) < len(pb) {
		pa = append(pa, 0)
	}
	for len(pb) < len(pa) {
		pb = append(pb, 0)
	}
	for i := range pa {
		switch {
		case pa[i] > pb[i]:
			return 1
		case pa[i] < pb[i]:
			return -1
		}
	}
	return 0
}

func versionParts(v string) []int {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}

	var parts []int
	for _, s := range strings.Split(v, ".") {
		n, err := strconv.Atoi(s)
		if err != nil {
			n = 0
		}
		parts = append(parts, n)
	}
	return parts
}

// getCachePath returns the path to the update cache file.
func getCachePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".strapd", "update-cache.json"), nil
}

// loadCache loads the update cache from disk. A missing or corrupt cache
// is treated as empty.
func (c *Checker) loadCache() *UpdateCache {
	data, err := os.ReadFile(c.CachePath)
	if err != nil {
		return &UpdateCache{}
	}

	var cache UpdateCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return &UpdateCache{}
	}

	return &cache
}

// saveCache saves the update cache to disk.
func (c *Checker) saveCache(cache *UpdateCache) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.CachePath), 0755); err != nil {
		return err
	}
	return os.WriteFile(c.CachePath, data, 0644)
}
