package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conn-castle/nodeswitch/internal/messages"
)

func newCurrentCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.CurrentUse,
		Short: messages.CurrentShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			inst, ok, err := s.service.Current()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok {
				_, _ = fmt.Fprintln(out, messages.CurrentNone)
				return nil
			}
			_, _ = fmt.Fprintf(out, messages.CurrentLineFmt, inst.Version, inst.Platform)
			_, _ = fmt.Fprintf(out, messages.CurrentPathFmt, inst.Dir)
			return nil
		},
	}
}
