package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conn-castle/nodeswitch/internal/messages"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var remote bool
	var ltsOnly bool
	cmd := &cobra.Command{
		Use:     messages.ListUse,
		Aliases: []string{"ls"},
		Short:   messages.ListShort,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if remote || ltsOnly {
				entries, err := s.service.Remote(cmd.Context(), ltsOnly)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					_, _ = fmt.Fprintln(out, messages.ListRemoteNone)
					return nil
				}
				_, _ = fmt.Fprintln(out, messages.ListRemoteHead)
				for _, entry := range entries {
					_, _ = fmt.Fprintf(out, messages.ListRemoteLineFmt, entry.Version, entry.LTS.Codename, entry.Date)
				}
				return nil
			}

			items, err := s.service.List()
			if err != nil {
				return err
			}
			if len(items) == 0 {
				_, _ = fmt.Fprintln(out, messages.ListNoneInstalled)
				return nil
			}
			_, _ = fmt.Fprintln(out, messages.ListInstalledHead)
			for _, item := range items {
				marker := messages.ListMarkerInactive
				if item.Active {
					marker = messages.ListMarkerActive
				}
				suffix := ""
				if item.Default {
					suffix = messages.ListDefaultSuffix
				}
				_, _ = fmt.Fprintf(out, messages.ListLineFmt, marker, item.Version, item.Platform, suffix)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, messages.ListFlagRemote)
	cmd.Flags().BoolVar(&ltsOnly, "lts", false, messages.ListFlagLTS)
	return cmd
}
