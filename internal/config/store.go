// Package config persists the default version record and loads user settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/conn-castle/nodeswitch/internal/fsutil"
	"github.com/conn-castle/nodeswitch/internal/messages"
)

// Config is the persisted default version and the platform it was set for.
type Config struct {
	Default  string `json:"default"`
	Platform string `json:"platform"`
}

// Store reads and writes config.json.
type Store struct {
	Path string
}

// Get returns the stored config, or nil when none has been written.
func (s Store) Get() (*Config, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(messages.ConfigReadFmt, s.Path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf(messages.ConfigDecodeFmt, s.Path, err)
	}
	return &cfg, nil
}

// Set replaces config.json atomically.
func (s Store) Set(cfg Config) error {
	if strings.TrimSpace(cfg.Default) == "" {
		return errors.New(messages.ConfigMissingDefault)
	}
	if strings.TrimSpace(cfg.Platform) == "" {
		return errors.New(messages.ConfigMissingPlatform)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf(messages.ConfigWriteFmt, s.Path, err)
	}
	data = append(data, '\n')
	if err := fsutil.WriteFileAtomic(s.Path, data, 0o644); err != nil {
		return fmt.Errorf(messages.ConfigWriteFmt, s.Path, err)
	}
	return nil
}
