package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conn-castle/nodeswitch/internal/messages"
)

func newUseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.UseUse,
		Short: messages.UseShort,
		Args:  requireTag(messages.UseUsage),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			active, err := s.service.Use(cmd.Context(), args[0], s.platform)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.UseDoneFmt, active.Version, active.Platform)
			warnIfNotOnPath(cmd, s.layout.CurrentPath())
			return nil
		},
	}
}

// warnIfNotOnPath prints a yellow hint when the activation link is missing from PATH.
func warnIfNotOnPath(cmd *cobra.Command, currentPath string) {
	want := filepath.Clean(currentPath)
	for _, entry := range filepath.SplitList(getenv("PATH")) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.EqualFold(filepath.Clean(entry), want) {
			return
		}
	}
	_, _ = color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), messages.UsePathHintFmt, currentPath)
}
