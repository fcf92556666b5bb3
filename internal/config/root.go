package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/conn-castle/nodeswitch/internal/messages"
)

const (
	// EnvHome overrides the store root when --root is not given.
	EnvHome = "NSW_HOME"
	// DefaultRootName is the store directory under the user's home.
	DefaultRootName = ".nsw"
)

var homeDir = homedir.Dir

// ResolveRoot picks the store root from the flag, then NSW_HOME, then
// ~/.nsw. A leading ~ is expanded and the result is made absolute.
func ResolveRoot(flag string, getenv func(string) string) (string, error) {
	raw := strings.TrimSpace(flag)
	if raw == "" && getenv != nil {
		raw = strings.TrimSpace(getenv(EnvHome))
	}
	if raw == "" {
		home, err := homeDir()
		if err != nil {
			return "", fmt.Errorf(messages.SettingsHomeDirFmt, err)
		}
		return filepath.Join(home, DefaultRootName), nil
	}
	expanded, err := homedir.Expand(raw)
	if err != nil {
		return "", fmt.Errorf(messages.SettingsExpandRootFmt, raw, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf(messages.SettingsExpandRootFmt, raw, err)
	}
	return abs, nil
}
