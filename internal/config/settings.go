package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/nodeswitch/internal/messages"
)

const (
	// EnvMirror overrides the settings mirror.
	EnvMirror = "NSW_MIRROR"
	// DefaultMirror is the upstream release host.
	DefaultMirror = "https://nodejs.org"
)

// ErrConfigValidation wraps settings that parse but fail validation.
var ErrConfigValidation = errors.New("settings validation failed")

// Settings is the optional settings.toml.
type Settings struct {
	Mirror  string          `toml:"mirror" validate:"required,http_url"`
	Network NetworkSettings `toml:"network"`
	Lock    LockSettings    `toml:"lock"`
}

// NetworkSettings controls catalog, probe, and download requests.
// TimeoutSeconds bounds connecting and waiting for headers, and how long a
// download may go without receiving data. DownloadTimeoutSeconds caps one
// archive download.
type NetworkSettings struct {
	TimeoutSeconds         int `toml:"timeout_seconds" validate:"gte=1,lte=3600"`
	DownloadTimeoutSeconds int `toml:"download_timeout_seconds" validate:"gte=1,lte=86400"`
	Retries                int `toml:"retries" validate:"gte=0,lte=10"`
}

// LockSettings bounds the wait for the store lock.
type LockSettings struct {
	TimeoutSeconds int `toml:"timeout_seconds" validate:"gte=0,lte=3600"`
}

// Timeout returns the per-request timeout.
func (n NetworkSettings) Timeout() time.Duration {
	return time.Duration(n.TimeoutSeconds) * time.Second
}

// DownloadTimeout returns the cap on one archive download.
func (n NetworkSettings) DownloadTimeout() time.Duration {
	return time.Duration(n.DownloadTimeoutSeconds) * time.Second
}

// Timeout returns the lock wait.
func (l LockSettings) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// DefaultSettings returns the settings used when settings.toml is absent.
func DefaultSettings() Settings {
	return Settings{
		Mirror:  DefaultMirror,
		Network: NetworkSettings{TimeoutSeconds: 30, DownloadTimeoutSeconds: 3600, Retries: 1},
		Lock:    LockSettings{TimeoutSeconds: 30},
	}
}

var settingsValidate = validator.New()

// LoadSettings reads settings.toml over the defaults and applies the
// NSW_MIRROR override. A missing file yields the defaults.
func LoadSettings(path string, getenv func(string) string) (Settings, error) {
	settings := DefaultSettings()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decodeSettings(data, &settings); err != nil {
			return Settings{}, fmt.Errorf(messages.SettingsDecodeFmt, path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Settings{}, fmt.Errorf(messages.SettingsReadFmt, path, err)
	}
	if getenv != nil {
		if mirror := strings.TrimSpace(getenv(EnvMirror)); mirror != "" {
			settings.Mirror = mirror
		}
	}
	settings.Mirror = strings.TrimRight(strings.TrimSpace(settings.Mirror), "/")
	if err := settings.Validate(path); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// decodeSettings rejects unknown keys so typos surface instead of being ignored.
func decodeSettings(data []byte, settings *Settings) error {
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(settings)
}

// Validate reports the first invalid field, wrapped in ErrConfigValidation.
func (s Settings) Validate(source string) error {
	err := settingsValidate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf(messages.SettingsInvalidFmt, ErrConfigValidation, source, err.Error())
	}
	first := fieldErrs[0]
	if first.StructField() == "Mirror" {
		return fmt.Errorf(messages.SettingsInvalidFmt, ErrConfigValidation, source, fmt.Sprintf(messages.SettingsInvalidMirror, s.Mirror))
	}
	return fmt.Errorf(messages.SettingsInvalidFmt, ErrConfigValidation, source, fmt.Sprintf(messages.SettingsFieldFmt, first.Namespace(), first.Tag()))
}
