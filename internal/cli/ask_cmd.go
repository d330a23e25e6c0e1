// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/portal-tui/internal/chat"
)

func newAskCmd(env *Env) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "ask <assistant> <message...>",
		Short: "Send one message to an assistant and print the reply",
		Example: `  portal ask contract "Summarise the termination clause"
  echo done | portal ask tech what does this pipeline do`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(env, args[0])
			if err != nil {
				return err
			}
			defer sess.Close()

			turn, ok := sess.Submit(strings.Join(args[1:], " "))
			if !ok {
				return errors.New("message is empty")
			}
			res := turn.Run()
			if res.Err != nil {
				return env.explain("no reply", res.Err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, newRenderer(out, env.Config, raw).Markdown(res.Message.Content))
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the reply without markdown rendering")
	return cmd
}

// openSession starts a conversation with the assistant id through the
// backend client.
func openSession(env *Env, assistantID string) (*chat.Session, error) {
	sess, err := chat.Open(assistantID, env.Client(),
		chat.WithTimeout(env.Config.RequestTimeout()),
		chat.WithLogger(env.Log))
	if err != nil {
		return nil, env.explain("", err)
	}
	return sess, nil
}
