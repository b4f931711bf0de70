package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

const shellHelp = `Type a message to chat, or a command:
  /help                 show this help
  /keys                 list API keys
  /add <name>           add an API key (prompted)
  /use <id>             activate an API key
  /remove <id>          delete an API key
  /validate <id>        check an API key against its provider
  /models               list models of the active key
  /model <name>         select a model
  /new                  start a conversation
  /list                 list conversations
  /open <id>            switch conversation
  /delete <id>          delete a conversation
  /show                 print the active conversation
  /theme dark|light     set the theme preference
  /exit                 quit`

func newShellCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive chat session",
		Args:  cobra.NoArgs,
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			repl(cmd.Context(), s, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			return nil
		}),
	}
}

// repl runs the interactive loop until /exit or end of input. Errors are
// already reported as notices, so they only end the current line.
func repl(ctx context.Context, s *session, in io.Reader, out, errOut io.Writer) {
	reader := bufio.NewReader(in)
	a := s.app

	fmt.Fprintln(out, "CyberChat shell. Type /help for commands.")
	for {
		fmt.Fprint(out, "cyberchat> ")
		line, err := readLine(reader)
		if err != nil {
			fmt.Fprintln(out)
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			if reply, err := a.SendMessage(ctx, line); err == nil {
				fmt.Fprintf(out, "\n%s\n\n", reply)
			}
			continue
		}

		args := strings.Fields(line)
		arg := func() (string, bool) {
			if len(args) < 2 {
				fmt.Fprintf(errOut, "Usage: %s <argument>\n", args[0])
				return "", false
			}
			return args[1], true
		}

		switch args[0] {
		case "/help":
			fmt.Fprintln(out, shellHelp)
		case "/keys":
			printKeys(out, a.Keys())
		case "/add":
			name, ok := arg()
			if !ok {
				continue
			}
			fmt.Fprint(errOut, "API key: ")
			secret, err := readLine(reader)
			if err != nil {
				return
			}
			_, _ = a.AddKey(ctx, name, secret)
		case "/use":
			if id, ok := arg(); ok {
				_ = a.SetActiveKey(id)
			}
		case "/remove":
			if id, ok := arg(); ok {
				_ = a.RemoveKey(id)
			}
		case "/validate":
			if id, ok := arg(); ok {
				_, _ = a.ValidateKey(ctx, id)
			}
		case "/models":
			for _, m := range a.AvailableModels() {
				fmt.Fprintln(out, m)
			}
		case "/model":
			if m, ok := arg(); ok {
				_ = a.SelectModel(m)
			}
		case "/new":
			_, _ = a.NewConversation()
		case "/list":
			activeID := ""
			if c := a.ActiveConversation(); c != nil {
				activeID = c.ID
			}
			printConversations(out, a.Conversations(), activeID)
		case "/open":
			if id, ok := arg(); ok {
				_ = a.SelectConversation(id)
			}
		case "/delete":
			if id, ok := arg(); ok {
				_ = a.DeleteConversation(id)
			}
		case "/show":
			if c := a.ActiveConversation(); c != nil {
				printTranscript(out, c)
			} else {
				fmt.Fprintln(out, "No active conversation.")
			}
		case "/theme":
			if t, ok := arg(); ok {
				_ = a.SetDarkMode(t == "dark")
			}
		case "/exit", "/quit":
			fmt.Fprintln(out, "Bye")
			return
		default:
			fmt.Fprintln(errOut, "Unknown command. Type /help for a list of commands.")
		}
	}
}
