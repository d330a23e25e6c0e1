// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/portal-tui/internal/session"
	"github.com/jeranaias/portal-tui/internal/ui/app"
)

// Version information, set from main.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// NewRootCmd builds the portal command tree.
func NewRootCmd() *cobra.Command {
	env := &Env{}

	root := &cobra.Command{
		Use:   "portal",
		Short: "Terminal client for the AI Platform",
		Long: `portal signs you in to the AI Platform and lets you chat with its
assistants and browse your chat history.

Run without a subcommand on a terminal to open the full-screen client.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.load(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			env.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !IsTTY() || !IsStdoutTTY() {
				return cmd.Help()
			}
			return runTUI(cmd, env)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&env.opts.configPath, "config", "", "config file (default ~/.portal/config.toml)")
	flags.StringVar(&env.opts.apiURL, "api-url", "", "backend base URL (overrides config and PORTAL_API_URL)")
	flags.StringVar(&env.opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newLoginCmd(env),
		newRegisterCmd(env),
		newLogoutCmd(env),
		newWhoamiCmd(env),
		newAssistantsCmd(env),
		newAskCmd(env),
		newChatCmd(env),
		newChatsCmd(env),
		newConfigCmd(env),
		newServeCmd(env),
		newVersionCmd(),
	)

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:")+" "+err.Error())
		os.Exit(ExitGeneralError)
	}
}

// runTUI starts the full-screen client. The token watcher is optional; the
// client works without it.
func runTUI(cmd *cobra.Command, env *Env) error {
	var events <-chan session.TokenEvent
	if env.Config.Auth.WatchToken {
		w, err := session.NewWatcher(env.Config.Auth.TokenFile)
		if err != nil {
			env.Log.Warn("token watcher unavailable", "error", err)
		} else {
			defer w.Close()
			events = w.Events()
		}
	}

	m := app.New(app.Deps{
		Config:      env.Config,
		Backend:     env.Client(),
		Auth:        env.Provider(),
		TokenEvents: events,
		Logger:      env.Log,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run portal: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "portal %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}
