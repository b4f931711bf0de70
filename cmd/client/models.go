package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newModelsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Show or choose the model of the active key",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the models of the active key",
		Args:  cobra.NoArgs,
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			if s.app.ActiveKey() == nil {
				return fmt.Errorf("no active API key")
			}
			selected := s.app.SelectedModel()
			for _, m := range s.app.AvailableModels() {
				mark := " "
				if m == selected {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, m)
			}
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "select <model>",
		Short: "Choose the model used for chat",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			return s.app.SelectModel(args[0])
		}),
	})
	return cmd
}
