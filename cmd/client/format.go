package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/atinyakov/cyberchat/internal/models"
)

func printKeys(w io.Writer, keys []models.Credential) {
	if len(keys) == 0 {
		fmt.Fprintln(w, "No API keys. Add one with: cyberchat keys add <name>")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTIVE\tID\tNAME\tPROVIDER\tKEY\tMODELS")
	for _, k := range keys {
		active := ""
		if k.IsActive {
			active = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", active, k.ID, k.Name, k.Provider, k.MaskedSecret, len(k.SupportedModels))
	}
	tw.Flush()
}

func printConversations(w io.Writer, convs []models.Conversation, activeID string) {
	if len(convs) == 0 {
		fmt.Fprintln(w, "No conversations yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTIVE\tID\tTITLE\tMESSAGES\tUPDATED")
	for _, c := range convs {
		active := ""
		if c.ID == activeID {
			active = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", active, c.ID, c.Title, len(c.Messages), c.UpdatedAt.Local().Format(time.DateTime))
	}
	tw.Flush()
}

func printTranscript(w io.Writer, c *models.Conversation) {
	fmt.Fprintf(w, "# %s\n", c.Title)
	for _, m := range c.Messages {
		who := "You"
		if m.Role == models.RoleAssistant {
			who = "AI"
		}
		fmt.Fprintf(w, "\n[%s] %s:\n%s\n", m.Timestamp.Local().Format(time.Kitchen), who, strings.TrimSpace(m.Content))
	}
}
