package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"iss-assistant-backend/internal/chat"
	"iss-assistant-backend/internal/store"
)

var errQuit = errors.New("quit")

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			conv, _ := a.sessions.GetOrCreate("")
			return runREPL(cmd.Context(), conv, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runREPL reads one utterance per line until EOF or "/quit". Status labels
// are printed as the turn moves through the pipeline.
func runREPL(ctx context.Context, conv *chat.Conversation, in io.Reader, w io.Writer) error {
	out := &lockedWriter{w: w}
	for _, m := range conv.Snapshot().Messages {
		fmt.Fprintf(out, "assistant> %s\n", m.Content)
	}

	snapshots, unsubscribe := conv.Subscribe()
	defer unsubscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		printStatus(snapshots, out)
	}()

	scanner := bufio.NewScanner(in)
	err := func() error {
		for {
			fmt.Fprint(out, "you> ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			line := scanner.Text()
			if strings.TrimSpace(line) == "/quit" {
				return errQuit
			}
			conv.SetInput(line)
			reply, err := conv.SubmitInput(ctx)
			if errors.Is(err, chat.ErrEmptyMessage) {
				continue
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "assistant> %s\n", reply.Text)
			if reply.Synthetic {
				fmt.Fprintln(out, "(note: the inventory backend was unreachable; this answer uses synthetic data)")
			}
		}
	}()

	unsubscribe()
	<-done
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}

// printStatus prints each status message once, the first time it appears.
func printStatus(snapshots <-chan chat.Snapshot, out io.Writer) {
	seen := map[string]bool{}
	for snap := range snapshots {
		for _, m := range snap.Messages {
			if m.Role == store.RoleStatus && !seen[m.ID] {
				seen[m.ID] = true
				fmt.Fprintf(out, "  ... %s\n", m.Content)
			}
		}
	}
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
