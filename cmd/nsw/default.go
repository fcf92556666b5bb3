package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conn-castle/nodeswitch/internal/messages"
)

func newDefaultCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.DefaultUse,
		Short: messages.DefaultShort,
		Args:  requireTag(messages.DefaultUsage),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			inst, err := s.service.SetDefault(cmd.Context(), args[0], s.platform)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.DefaultDoneFmt, inst.Version, inst.Platform)
			warnIfNotOnPath(cmd, s.layout.CurrentPath())
			return nil
		},
	}
}
