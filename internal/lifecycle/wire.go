package lifecycle

import (
	"io"
	"log/slog"

	"github.com/conn-castle/nodeswitch/internal/archive"
	"github.com/conn-castle/nodeswitch/internal/availability"
	"github.com/conn-castle/nodeswitch/internal/catalog"
	"github.com/conn-castle/nodeswitch/internal/config"
	"github.com/conn-castle/nodeswitch/internal/fetch"
	"github.com/conn-castle/nodeswitch/internal/link"
	"github.com/conn-castle/nodeswitch/internal/lock"
	"github.com/conn-castle/nodeswitch/internal/logging"
	"github.com/conn-castle/nodeswitch/internal/resolve"
	"github.com/conn-castle/nodeswitch/internal/store"
)

// Options tunes the collaborators built by New.
type Options struct {
	// Offline reads the cached catalog instead of fetching it.
	Offline bool
	Logger  *slog.Logger
	// Progress receives install progress lines.
	Progress io.Writer
}

// New wires the production collaborators for the store at layout.
func New(layout store.Layout, settings config.Settings, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	client := fetch.NewClient(settings.Network.Timeout(), settings.Network.Retries)
	client.DownloadTimeout = settings.Network.DownloadTimeout()
	cache := &catalog.Cache{
		Path:    layout.CatalogPath(),
		URL:     catalog.URL(settings.Mirror),
		Getter:  client,
		Offline: opts.Offline,
		Logger:  logger,
	}
	return &Service{
		Layout: layout,
		Resolver: &resolve.Resolver{
			Catalog: cache,
			Checker: &availability.Checker{Mirror: settings.Mirror, Prober: client},
			Logger:  logger,
		},
		Installer: &store.Installer{
			Layout:     layout,
			Mirror:     settings.Mirror,
			Downloader: client,
			Extractor:  archive.Zip{},
			Logger:     logger,
			Progress:   opts.Progress,
		},
		Catalog:  cache,
		Switcher: &link.Switcher{Layout: layout, Logger: logger},
		Config:   config.Store{Path: layout.ConfigPath()},
		Lock:     lock.File{Path: layout.LockPath(), Timeout: settings.Lock.Timeout()},
		Logger:   logger,
	}
}
