package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newKeysCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
	}
	cmd.AddCommand(newKeysAddCmd(opts))
	cmd.AddCommand(newKeysListCmd(opts))
	cmd.AddCommand(newKeysRemoveCmd(opts))
	cmd.AddCommand(newKeysActivateCmd(opts))
	cmd.AddCommand(newKeysValidateCmd(opts))
	return cmd
}

func newKeysAddCmd(opts *options) *cobra.Command {
	var secret string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an API key; the provider is detected from the key",
		Long:  "Adds an API key. Without --key the key is read from stdin, hidden when stdin is a terminal.",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			if secret == "" {
				var err error
				secret, err = promptSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "API key: ")
				if err != nil {
					return err
				}
			}
			id, err := s.app.AddKey(cmd.Context(), args[0], secret)
			if err != nil {
				return err
			}
			k := s.app.Key(id)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", id, k.Provider, k.MaskedSecret)
			return nil
		}),
	}
	cmd.Flags().StringVar(&secret, "key", "", "API key (prompted when omitted)")
	return cmd
}

func newKeysListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored API keys",
		Args:  cobra.NoArgs,
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			printKeys(cmd.OutOrStdout(), s.app.Keys())
			return nil
		}),
	}
}

func newKeysRemoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete an API key",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			return s.app.RemoveKey(args[0])
		}),
	}
}

func newKeysActivateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <id>",
		Short: "Use an API key for chat",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			return s.app.SetActiveKey(args[0])
		}),
	}
}

func newKeysValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <id>",
		Short: "Check an API key against its provider",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			res, err := s.app.ValidateKey(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !res.IsValid {
				return fmt.Errorf("key %s was rejected by %s", args[0], res.Provider)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		}),
	}
}
