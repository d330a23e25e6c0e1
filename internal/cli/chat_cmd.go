// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/portal-tui/internal/chat"
	"github.com/jeranaias/portal-tui/internal/config"
	"github.com/jeranaias/portal-tui/internal/logging"
)

const (
	userPrompt      = "you> "
	historyFileName = "chat_history"
)

func newChatCmd(env *Env) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "chat <assistant>",
		Short: "Chat with an assistant in the terminal",
		Long: `Start an interactive conversation with one assistant.

Commands:
  /history   show the conversation so far
  /exit      leave (also: exit, quit, Ctrl+D)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(env, args[0])
			if err != nil {
				return err
			}
			defer sess.Close()

			var lr lineReader
			if isTerminal(cmd.InOrStdin()) && isTerminal(cmd.OutOrStdout()) {
				lr = newLinerReader(env.Log)
			} else {
				lr = newScanReader(cmd.InOrStdin())
			}
			defer lr.Close()

			out := cmd.OutOrStdout()
			return runChat(sess, lr, out, newRenderer(out, env.Config, raw), env.Log)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print replies without markdown rendering")
	return cmd
}

// runChat is the read-send-print loop. Failed replies are shown as the
// assistant's message and the conversation continues.
func runChat(sess *chat.Session, lr lineReader, out io.Writer, r *renderer, log *logging.Logger) error {
	a := sess.Assistant()
	fmt.Fprintln(out, TitleStyle.Render(a.Name)+"  "+DimStyle.Render(a.Purpose))
	fmt.Fprintln(out, DimStyle.Render("Type /exit to leave, /history to show the conversation."))

	for {
		line, err := lr.Prompt(userPrompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		text := strings.TrimSpace(line)
		switch text {
		case "":
			continue
		case "/exit", "/quit", "exit", "quit":
			return nil
		case "/history":
			printTranscript(out, sess)
			continue
		}

		turn, ok := sess.Submit(text)
		if !ok {
			continue
		}
		res := turn.Run()
		if res.Err != nil {
			log.Warn("chat reply failed", "assistant", a.ID, "error", res.Err)
		}
		fmt.Fprintln(out, AccentStyle.Render(a.Name+":"))
		fmt.Fprintln(out, r.Markdown(res.Message.Content))
		fmt.Fprintln(out)
	}
}

func printTranscript(out io.Writer, sess *chat.Session) {
	msgs := sess.Transcript()
	if len(msgs) == 0 {
		fmt.Fprintln(out, DimStyle.Render("(no messages yet)"))
		return
	}
	for _, m := range msgs {
		fmt.Fprintf(out, "%s %s\n", DimStyle.Render("["+m.FormatTimestamp()+"] "+m.Role.DisplayName()+":"), m.Content)
	}
}

// =============================================================================
// LINE INPUT
// =============================================================================

// lineReader reads one line of user input per prompt. It returns io.EOF
// when input ends.
type lineReader interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// linerReader provides line editing and persistent history on a terminal.
type linerReader struct {
	state       *liner.State
	historyFile string
	log         *logging.Logger
}

func newLinerReader(log *logging.Logger) *linerReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)

	lr := &linerReader{state: state, log: log}
	if dir, err := config.ConfigDir(); err == nil {
		lr.historyFile = filepath.Join(dir, historyFileName)
		if f, err := os.Open(lr.historyFile); err == nil {
			if _, err := state.ReadHistory(f); err != nil {
				log.Debug("chat history unreadable", "error", err)
			}
			f.Close()
		}
	}
	return lr
}

func (l *linerReader) Prompt(prompt string) (string, error) {
	line, err := l.state.Prompt(prompt)
	if err == nil && strings.TrimSpace(line) != "" {
		l.state.AppendHistory(line)
	}
	return line, err
}

// Close saves the history with owner-only permissions and restores the
// terminal.
func (l *linerReader) Close() error {
	defer l.state.Close()
	if l.historyFile == "" {
		return nil
	}
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}
	f, err := os.OpenFile(l.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		l.log.Warn("failed to save chat history", "error", err)
		return err
	}
	defer f.Close()
	_, err = l.state.WriteHistory(f)
	return err
}

// scanReader reads piped input without prompting.
type scanReader struct {
	scanner *bufio.Scanner
}

func newScanReader(in io.Reader) *scanReader {
	return &scanReader{scanner: bufio.NewScanner(in)}
}

func (s *scanReader) Prompt(string) (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (s *scanReader) Close() error { return nil }
