// Package catalog fetches, caches, and parses the remote release catalog.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/conn-castle/nodeswitch/internal/fsutil"
	"github.com/conn-castle/nodeswitch/internal/logging"
	"github.com/conn-castle/nodeswitch/internal/messages"
	"github.com/conn-castle/nodeswitch/internal/version"
)

// EnvNoNetwork switches catalog loads to the cached copy.
const EnvNoNetwork = "NSW_NO_NETWORK"

// ErrCatalogFetch wraps every failure to obtain catalog data.
var ErrCatalogFetch = errors.New("catalog fetch failed")

// Entry is one release in the catalog.
type Entry struct {
	Version string   `json:"version" validate:"required,release"`
	LTS     LTS      `json:"lts"`
	Files   []string `json:"files" validate:"required,min=1,dive,required"`
	Date    string   `json:"date,omitempty"`
	NPM     string   `json:"npm,omitempty"`
}

// IsLTS reports whether the entry belongs to an LTS line.
func (e Entry) IsLTS() bool {
	return e.LTS.Codename != ""
}

// LTS decodes the catalog's lts field, which is either false or a codename string.
type LTS struct {
	Codename string
}

// UnmarshalJSON accepts false, null, or a codename string.
func (l *LTS) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch string(trimmed) {
	case "null", "false":
		l.Codename = ""
		return nil
	}
	var codename string
	if err := json.Unmarshal(trimmed, &codename); err != nil {
		return fmt.Errorf(messages.CatalogInvalidLTSFmt, string(trimmed))
	}
	l.Codename = strings.TrimSpace(codename)
	return nil
}

// MarshalJSON writes false for non-LTS entries.
func (l LTS) MarshalJSON() ([]byte, error) {
	if l.Codename == "" {
		return []byte("false"), nil
	}
	return json.Marshal(l.Codename)
}

var entryValidate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("release", func(fl validator.FieldLevel) bool {
		return version.IsRelease(fl.Field().String())
	})
	return v
}

// Parse decodes and validates a catalog document. The document must be a JSON
// array; entries that fail validation are dropped and logged. Source order is kept.
func Parse(data []byte, logger *slog.Logger) ([]Entry, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf(messages.CatalogDecodeFmt, err)
	}
	entries := make([]Entry, 0, len(raw))
	for i, item := range raw {
		var entry Entry
		if err := json.Unmarshal(item, &entry); err != nil {
			logger.Warn(fmt.Sprintf(messages.CatalogDroppedEntryFmt, i, err))
			continue
		}
		entry.Version = strings.TrimSpace(entry.Version)
		if err := entryValidate.Struct(entry); err != nil {
			logger.Warn(fmt.Sprintf(messages.CatalogDroppedEntryFmt, i, err))
			continue
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, errors.New(messages.CatalogNoValidEntries)
	}
	return entries, nil
}

// Getter fetches a URL into memory.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// URL returns the catalog location on mirror.
func URL(mirror string) string {
	return strings.TrimRight(mirror, "/") + "/download/release/index.json"
}

// Cache is the point-in-time local copy of the catalog.
type Cache struct {
	// Path is the cache file, overwritten verbatim on every refresh.
	Path    string
	URL     string
	Getter  Getter
	Offline bool
	Logger  *slog.Logger
}

// Load returns fresh catalog entries, or the cached ones when Offline is set.
func (c *Cache) Load(ctx context.Context) ([]Entry, error) {
	if c.Offline {
		return c.ReadCached()
	}
	return c.Refresh(ctx)
}

// Refresh fetches the catalog, replaces the cache file, and returns the entries.
// The cache is only replaced when the fetched document parses.
func (c *Cache) Refresh(ctx context.Context) ([]Entry, error) {
	if c.Getter == nil {
		return nil, fmt.Errorf("%w: "+messages.InstallCollaboratorRequired, ErrCatalogFetch, "catalog getter")
	}
	data, err := c.Getter.Get(ctx, c.URL)
	if err != nil {
		return nil, fmt.Errorf(messages.CatalogFetchFmt, ErrCatalogFetch, err)
	}
	entries, err := Parse(data, c.Logger)
	if err != nil {
		return nil, fmt.Errorf(messages.CatalogInvalidSourceFmt, ErrCatalogFetch, c.URL, err)
	}
	if err := fsutil.WriteFileAtomic(c.Path, data, 0o644); err != nil {
		return nil, fmt.Errorf(messages.CatalogWriteCacheFmt, ErrCatalogFetch, c.Path, err)
	}
	return entries, nil
}

// ReadCached parses the cache file without touching the network.
func (c *Cache) ReadCached() ([]Entry, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf(messages.CatalogOfflineMissingFmt, ErrCatalogFetch, c.Path, EnvNoNetwork)
		}
		return nil, fmt.Errorf(messages.CatalogReadCacheFmt, ErrCatalogFetch, c.Path, err)
	}
	entries, err := Parse(data, c.Logger)
	if err != nil {
		return nil, fmt.Errorf(messages.CatalogInvalidSourceFmt, ErrCatalogFetch, c.Path, err)
	}
	return entries, nil
}
