package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conn-castle/nodeswitch/internal/catalog"
	"github.com/conn-castle/nodeswitch/internal/config"
	"github.com/conn-castle/nodeswitch/internal/lifecycle"
	"github.com/conn-castle/nodeswitch/internal/logging"
	"github.com/conn-castle/nodeswitch/internal/messages"
	"github.com/conn-castle/nodeswitch/internal/platform"
	"github.com/conn-castle/nodeswitch/internal/store"
)

const (
	flagRoot     = "root"
	flagPlatform = "platform"
	flagVerbose  = "verbose"
	flagOffline  = "offline"
)

var getenv = os.Getenv

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	root     string
	platform string
	verbose  bool
	offline  bool
}

// session is the per-invocation store, platform, and service.
type session struct {
	layout   store.Layout
	platform string
	service  *lifecycle.Service
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		Long:          fmt.Sprintf(messages.RootLong, filepath.Join("~", config.DefaultRootName, "current")),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.root, flagRoot, "", messages.RootFlagRoot)
	flags.StringVar(&opts.platform, flagPlatform, "", messages.RootFlagPlatform)
	flags.BoolVarP(&opts.verbose, flagVerbose, "v", false, messages.RootFlagVerbose)
	flags.BoolVar(&opts.offline, flagOffline, false, messages.RootFlagOffline)
	cmd.Flags().Bool("version", false, messages.RootVersionFlag)

	cmd.AddCommand(
		newInstallCmd(opts),
		newUseCmd(opts),
		newDefaultCmd(opts),
		newRemoveCmd(opts),
		newListCmd(opts),
		newCurrentCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// open resolves the store root, settings, and platform for cmd.
func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	root, err := config.ResolveRoot(o.root, getenv)
	if err != nil {
		return nil, err
	}
	layout := store.Layout{Root: root}
	settings, err := config.LoadSettings(layout.SettingsPath(), getenv)
	if err != nil {
		return nil, err
	}
	platformTag, err := o.platformTag()
	if err != nil {
		return nil, err
	}
	offline := o.offline || strings.TrimSpace(getenv(catalog.EnvNoNetwork)) != ""
	service := lifecycle.New(layout, settings, lifecycle.Options{
		Offline:  offline,
		Logger:   logging.New(cmd.ErrOrStderr(), o.verbose),
		Progress: cmd.ErrOrStderr(),
	})
	return &session{layout: layout, platform: platformTag, service: service}, nil
}

func (o *rootOptions) platformTag() (string, error) {
	if strings.TrimSpace(o.platform) != "" {
		return platform.Parse(o.platform)
	}
	return platform.Current(getenv)
}

// requireTag fails before any I/O when the version argument is missing.
func requireTag(usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
			return errors.New(usage)
		}
		return nil
	}
}
