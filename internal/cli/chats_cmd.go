// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/jeranaias/portal-tui/internal/export"
	"github.com/jeranaias/portal-tui/internal/logs"
	"github.com/jeranaias/portal-tui/internal/model"
)

func newChatsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chats",
		Aliases: []string{"logs", "history"},
		Short:   "Browse and export your chat history",
	}
	cmd.AddCommand(
		newChatsListCmd(env),
		newChatsShowCmd(env),
		newChatsExportCmd(env),
	)
	return cmd
}

// loadHistory fetches every record, newest first.
func loadHistory(cmd *cobra.Command, env *Env) (*logs.Screen, error) {
	scr := logs.New(env.Client(), env.Log)
	if _, err := scr.Load(cmd.Context()); err != nil {
		return nil, env.explain("load chat history", err)
	}
	return scr, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// =============================================================================
// LIST
// =============================================================================

func newChatsListCmd(env *Env) *cobra.Command {
	var (
		filter string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List chats, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scr, err := loadHistory(cmd, env)
			if err != nil {
				return err
			}
			scr.Filter(filter)
			recs := scr.Visible()

			out := cmd.OutOrStdout()
			if asJSON {
				if recs == nil {
					recs = []model.ChatRecord{}
				}
				return writeJSON(out, recs)
			}
			if len(recs) == 0 {
				fmt.Fprintln(out, DimStyle.Render(scr.EmptyText()))
				return nil
			}
			printChatTable(out, recs)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only chats whose user, assistant or topic contains this text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func printChatTable(out io.Writer, recs []model.ChatRecord) {
	idWidth := len("ID")
	for _, r := range recs {
		idWidth = max(idWidth, len(r.ID))
	}
	topicWidth := max(terminalWidth(out)-idWidth-58, 16)

	header := column("ID", idWidth) + "  " + column("Assistant", 22) + column("Topic", topicWidth) +
		"  " + column("Date", 11) + column("Time", 9) + column("Msgs", 6) + "Status"
	fmt.Fprintln(out, LabelStyle.UnsetWidth().Bold(true).Render(header))
	fmt.Fprintln(out, RenderSeparator(runewidth.StringWidth(header)))
	for _, r := range recs {
		fmt.Fprintln(out, column(r.ID, idWidth)+"  "+column(r.AssistantName, 22)+column(r.Topic(), topicWidth)+
			"  "+column(r.Date(), 11)+column(r.Time(), 9)+column(strconv.Itoa(r.MessageCount()), 6)+r.Status())
	}
}

// =============================================================================
// SHOW
// =============================================================================

func newChatsShowCmd(env *Env) *cobra.Command {
	var (
		asJSON bool
		raw    bool
	)

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one chat transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := env.Client().Chat(cmd.Context(), args[0])
			if err != nil {
				return env.explain("chat "+args[0], err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, rec)
			}
			file, err := export.One(rec, export.FormatMarkdown)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, newRenderer(out, env.Config, raw).Markdown(string(file.Data)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without rendering")
	return cmd
}

// =============================================================================
// EXPORT
// =============================================================================

func newChatsExportCmd(env *Env) *cobra.Command {
	var (
		format string
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "export [<id>]",
		Short: "Export one chat, or the whole history, to a file",
		Example: `  portal chats export 42 --format markdown
  portal chats export --format yaml --dir ./backup`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = env.Config.Export.Format
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = env.Config.Export.Dir
			}

			var file *export.File
			if len(args) == 1 {
				rec, err := env.Client().Chat(cmd.Context(), args[0])
				if err != nil {
					return env.explain("chat "+args[0], err)
				}
				file, err = export.One(rec, f)
				if err != nil {
					return err
				}
			} else {
				scr, err := loadHistory(cmd, env)
				if err != nil {
					return err
				}
				file, err = scr.ExportAll(f)
				if err != nil {
					return err
				}
			}

			path, err := file.WriteTo(dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Exported")+" "+path)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "json, yaml or markdown (default from config)")
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default from config)")
	return cmd
}
