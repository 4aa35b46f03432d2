package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/door43/catalog-job-handler/internal/domain/model"
	"github.com/door43/catalog-job-handler/internal/domain/webhook"
)

func newResolveCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "resolve <payload.json|->",
		Short: "Shows the commit identity a payload resolves to, without running it",
		Args:  cobra.ExactArgs(1),
		// resolve is offline and needs no configuration.
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			id := webhook.NewResolver(nil).Resolve(cmd.Context(), payload)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(id)
			}
			return printIdentity(cmd.OutOrStdout(), id)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the identity as JSON")
	return cmd
}

func printIdentity(out io.Writer, id model.CommitIdentity) error {
	titleColor.Fprintln(out, id.Describe())
	rows := []struct{ label, value string }{
		{"event", id.EventKind},
		{"owner", id.Owner},
		{"repo", id.RepoName},
		{"kind", string(id.Kind)},
		{"id", orNone(id.IDString())},
		{"archive", orNone(id.ArchiveURLString())},
		{"action", id.ActionLabel},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(out, "  %-8s %s\n", r.label+":", r.value); err != nil {
			return err
		}
	}
	if !id.HasID() {
		errorColor.Fprintln(out, "  nothing to process")
	}
	if len(id.Fallbacks) > 0 {
		warnColor.Fprintf(out, "  defaults used for: %v\n", id.Fallbacks)
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
