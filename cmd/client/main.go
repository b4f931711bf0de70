// Package main is the CyberChat command-line client. It keeps API keys and
// conversations on the local machine and talks to the backend proxy only to
// detect, validate and use keys.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/atinyakov/cyberchat/internal/client/api"
	"github.com/spf13/cobra"
)

var (
	// version holds the build version set via ldflags.
	version = "dev"
	// buildDate holds the build timestamp set via ldflags.
	buildDate = "unknown"
)

// Environment variables that override flag defaults.
const (
	envURL   = "CYBERCHAT_URL"
	envStore = "CYBERCHAT_STORE"
)

// options are the persistent flags shared by every command.
type options struct {
	baseURL   string
	storePath string
	storeKind string
	timeout   time.Duration
	caFile    string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "cyberchat",
		Short:         "CyberChat - bring-your-own-key cybersecurity assistant",
		Long:          "CyberChat stores your AI provider keys and conversations locally and chats with OpenAI, Anthropic or Google models through the CyberChat backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if v, ok := os.LookupEnv(envURL); ok && v != "" && !cmd.Flags().Changed("url") {
				opts.baseURL = v
			}
			if v, ok := os.LookupEnv(envStore); ok && v != "" && !cmd.Flags().Changed("store") {
				opts.storePath = v
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.baseURL, "url", "http://localhost:8080", "backend base URL (env "+envURL+")")
	pf.StringVar(&opts.storePath, "store", "", "local storage path (env "+envStore+")")
	pf.StringVar(&opts.storeKind, "store-kind", "json", "local storage backend: json or bolt")
	pf.DurationVar(&opts.timeout, "timeout", api.DefaultTimeout, "backend request timeout")
	pf.StringVar(&opts.caFile, "ca", "", "extra CA certificate for an HTTPS backend")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging to stderr")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newKeysCmd(opts))
	cmd.AddCommand(newModelsCmd(opts))
	cmd.AddCommand(newChatCmd(opts))
	cmd.AddCommand(newSendCmd(opts))
	cmd.AddCommand(newThemeCmd(opts))
	cmd.AddCommand(newShellCmd(opts))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cyberchat %s (built: %s)\n", version, buildDate)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
