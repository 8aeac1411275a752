// Package source supplies raw spreadsheet bytes for datasets, either from
// the local storage namespace that uploads land in or from an HTTP origin.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Val0905/INEA/pkg/engine"
)

// Dir resolves a dataset to a file in a single storage directory by the
// manifest's case-sensitive filename prefix. When several files share the
// prefix the newest wins, so a fresh upload supersedes the seeded export.
type Dir struct {
	Root string
}

func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

// Fetch reads the bytes of the dataset's current file.
func (d *Dir) Fetch(_ context.Context, spec *engine.DatasetSpec) ([]byte, error) {
	path, err := d.Resolve(spec)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Resolve returns the path of the newest .xlsx file carrying the dataset's
// prefix.
func (d *Dir) Resolve(spec *engine.DatasetSpec) (string, error) {
	entries, err := os.ReadDir(d.Root)
	if err != nil {
		return "", fmt.Errorf("read storage dir %s: %w", d.Root, err)
	}

	type candidate struct {
		name string
		mod  time.Time
	}
	var found []candidate
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, spec.FilePrefix) {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, candidate{name: name, mod: info.ModTime()})
	}
	if len(found) == 0 {
		return "", fmt.Errorf("no %s*.xlsx file in %s", spec.FilePrefix, d.Root)
	}
	sort.Slice(found, func(i, j int) bool {
		if !found[i].mod.Equal(found[j].mod) {
			return found[i].mod.After(found[j].mod)
		}
		return found[i].name > found[j].name
	})
	return filepath.Join(d.Root, found[0].name), nil
}

// HTTP fetches dataset bytes from a remote origin, with retries. URLs are
// <base>/<prefix>.xlsx unless the manifest prefix already names a full file.
type HTTP struct {
	Base   string
	Client *http.Client
}

func NewHTTP(base string) *HTTP {
	return &HTTP{
		Base:   strings.TrimRight(base, "/"),
		Client: &http.Client{Timeout: 2 * time.Minute},
	}
}

// Fetch downloads the dataset workbook with three attempts and exponential
// backoff between them.
func (h *HTTP) Fetch(ctx context.Context, spec *engine.DatasetSpec) ([]byte, error) {
	name := spec.FilePrefix
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		name += ".xlsx"
	}
	url := h.Base + "/" + name

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		resp, err := h.Client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
			continue
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return data, nil
	}
	return nil, fmt.Errorf("download %s failed after 3 attempts: %w", url, lastErr)
}
