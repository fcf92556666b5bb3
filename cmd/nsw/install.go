package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conn-castle/nodeswitch/internal/messages"
)

func newInstallCmd(opts *rootOptions) *cobra.Command {
	var activate bool
	cmd := &cobra.Command{
		Use:   messages.InstallUse,
		Short: messages.InstallShort,
		Args:  requireTag(messages.InstallUsage),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			installed, err := s.service.Install(cmd.Context(), args[0], s.platform)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, messages.InstallDoneFmt, installed.Version, installed.Platform, installed.Dir)
			if !activate {
				_, _ = fmt.Fprintf(out, messages.InstallUseHintFmt, installed.Version)
				return nil
			}
			active, err := s.service.Use(cmd.Context(), installed.Version, s.platform)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, messages.UseDoneFmt, active.Version, active.Platform)
			warnIfNotOnPath(cmd, s.layout.CurrentPath())
			return nil
		},
	}
	cmd.Flags().BoolVar(&activate, "use", false, messages.InstallFlagUse)
	return cmd
}
