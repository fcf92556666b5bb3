package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conn-castle/nodeswitch/internal/messages"
	"github.com/conn-castle/nodeswitch/internal/prompt"
	"github.com/conn-castle/nodeswitch/internal/terminal"
)

var (
	isInteractiveFunc = terminal.IsInteractive
	newConfirmerFunc  = func() prompt.Confirmer { return prompt.NewHuhConfirmer() }
)

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   messages.RemoveUse,
		Short: messages.RemoveShort,
		Args:  requireTag(messages.RemoveUsage),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			inst, err := s.service.Match(args[0], s.platform)
			if err != nil {
				return err
			}
			active, err := s.service.IsActive(inst)
			if err != nil {
				return err
			}
			if active && !yes && isInteractiveFunc() {
				ok, err := newConfirmerFunc().Confirm(fmt.Sprintf(messages.RemoveConfirmFmt, inst.Version, inst.Platform))
				if err != nil {
					return err
				}
				if !ok {
					_, _ = color.New(color.FgYellow).Fprintln(cmd.ErrOrStderr(), messages.RemoveCancelled)
					return nil
				}
			}
			result, err := s.service.Remove(cmd.Context(), inst.Version, s.platform)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, messages.RemoveDoneFmt, result.Removed.Version, result.Removed.Platform)
			if result.ClearedLink {
				_, _ = fmt.Fprintf(out, messages.RemoveClearedLinkFmt, result.Removed.Version)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, messages.RemoveFlagYes)
	return cmd
}
