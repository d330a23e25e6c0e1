// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jeranaias/portal-tui/internal/session"
)

// =============================================================================
// LOGIN / REGISTER
// =============================================================================

type credentials struct {
	name       string
	department string
	email      string
	password   string
}

func newLoginCmd(env *Env) *cobra.Command {
	var c credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session token",
		Long: `Sign in with email and password. The token is saved to the configured
token file and shared with the full-screen client.

Missing values are prompted for; the password is read without echo.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			var err error
			if c.email, err = p.Line("Email", c.email); err != nil {
				return err
			}
			if c.password, err = p.Secret("Password", c.password); err != nil {
				return err
			}

			id, err := env.Provider().Login(cmd.Context(), c.email, c.password)
			if err != nil {
				return env.explain(actionSignIn, err)
			}
			printSignedIn(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&c.email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&c.password, "password", "p", "", "account password (prompted when omitted)")
	return cmd
}

func newRegisterCmd(env *Env) *cobra.Command {
	var c credentials

	cmd := &cobra.Command{
		Use:     "register",
		Aliases: []string{"signup"},
		Short:   "Create an account and sign in",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			var err error
			if c.name, err = p.Line("Full name", c.name); err != nil {
				return err
			}
			if c.department, err = p.Line("Department", c.department); err != nil {
				return err
			}
			if c.email, err = p.Line("Email", c.email); err != nil {
				return err
			}
			if c.password, err = p.Secret("Password", c.password); err != nil {
				return err
			}

			id, err := env.Provider().Register(cmd.Context(), c.name, c.department, c.email, c.password)
			if err != nil {
				return env.explain("sign up failed", err)
			}
			printSignedIn(cmd.OutOrStdout(), id)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&c.name, "name", "n", "", "full name")
	f.StringVarP(&c.department, "department", "d", "", "department")
	f.StringVarP(&c.email, "email", "e", "", "account email")
	f.StringVarP(&c.password, "password", "p", "", "account password (prompted when omitted)")
	return cmd
}

func printSignedIn(w io.Writer, id session.Identity) {
	fmt.Fprintln(w, SuccessStyle.Render("Signed in")+" as "+id.DisplayName()+" <"+id.Email+">")
}

// =============================================================================
// LOGOUT / WHOAMI
// =============================================================================

func newLogoutCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and delete the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.Provider().Logout(); err != nil {
				return fmt.Errorf("sign out: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(env *Env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := env.Provider().Restore(cmd.Context())
			if err != nil {
				return env.explain("", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]string{
					"name":       id.Name,
					"email":      id.Email,
					"department": id.Department,
				})
			}
			fmt.Fprintln(out, RenderField("Name", id.DisplayName()))
			fmt.Fprintln(out, RenderField("Email", id.Email))
			fmt.Fprintln(out, RenderField("Department", id.Department))
			fmt.Fprintln(out, RenderField("Backend", env.Client().BaseURL()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
