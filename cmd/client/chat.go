package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Manage conversations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Start a conversation and make it active",
		Args:  cobra.NoArgs,
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			id, err := s.app.NewConversation()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List conversations, most recent first",
		Args:  cobra.NoArgs,
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			activeID := ""
			if c := s.app.ActiveConversation(); c != nil {
				activeID = c.ID
			}
			printConversations(cmd.OutOrStdout(), s.app.Conversations(), activeID)
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "open <id>",
		Short: "Make a conversation active",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			return s.app.SelectConversation(args[0])
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			return s.app.DeleteConversation(args[0])
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show [id]",
		Short: "Print a conversation (the active one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			c := s.app.ActiveConversation()
			if len(args) == 1 {
				c = s.app.Conversation(args[0])
			}
			if c == nil {
				return errors.New("conversation not found")
			}
			printTranscript(cmd.OutOrStdout(), c)
			return nil
		}),
	})
	return cmd
}

func newSendCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "send <message...>",
		Short: "Send a message to the active conversation and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			reply, err := s.app.SendMessage(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		}),
	}
}

func newThemeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light]",
		Short:     "Show or set the theme preference",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"dark", "light"},
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			if len(args) == 1 {
				if err := s.app.SetDarkMode(args[0] == "dark"); err != nil {
					return err
				}
			}
			theme := "light"
			if s.app.DarkMode() {
				theme = "dark"
			}
			fmt.Fprintln(cmd.OutOrStdout(), theme)
			return nil
		}),
	}
}
