// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/portal-tui/internal/catalog"
)

type assistantJSON struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
}

func newAssistantsCmd(env *Env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "assistants",
		Short: "List the AI assistants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			all := catalog.All()

			if asJSON {
				list := make([]assistantJSON, 0, len(all))
				for _, a := range all {
					list = append(list, assistantJSON{ID: a.ID, Name: a.Name, Purpose: a.Purpose})
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}

			for _, a := range all {
				fmt.Fprintln(out, AccentStyle.Render(column(a.ID, 12))+column(a.Name, 32)+DimStyle.Render(a.Summary))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
