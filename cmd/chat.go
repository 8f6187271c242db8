package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nexuscore/nexus/internal/app"
	"github.com/nexuscore/nexus/internal/orchestrator"
	"github.com/nexuscore/nexus/internal/session"
)

var (
	flagSessionID   string
	flagShowThought bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Chat starts an interactive conversation. Each answer is grounded in the
memory store; the full conversation is persisted and can be resumed later
with --session.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&flagSessionID, "session", "s", "", "resume an existing session by id")
	chatCmd.Flags().BoolVarP(&flagShowThought, "thoughts", "t", false, "show the model's reasoning before each answer")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := resumeOrCreate(ctx, a, flagSessionID)
	if err != nil {
		return err
	}

	fmt.Printf("Session: %s (%s)\n", sess.Title, sess.ID)
	fmt.Printf("Memory: %d records. Type 'exit' or Ctrl-D to quit.\n\n", a.Memory.Count())

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		if err := runTurn(ctx, a, sess, input); err != nil {
			return err
		}
		if ctx.Err() != nil {
			break
		}
	}

	fmt.Println("\nBye.")
	return scanner.Err()
}

// runTurn processes one user message: answer, persist both turns, and
// auto-title the session on its first exchange.
func runTurn(ctx context.Context, a *app.App, sess *session.Session, input string) error {
	history, err := a.Sessions.Turns(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	answer := a.Orchestrator.ProcessQuery(ctx, input, history)
	printAnswer(answer)

	if err := a.Sessions.AppendTurn(ctx, sess.ID, orchestrator.ChatTurn{
		Role: orchestrator.RoleUser, Content: input,
	}); err != nil {
		return fmt.Errorf("saving turn: %w", err)
	}
	if err := a.Sessions.AppendTurn(ctx, sess.ID, orchestrator.ChatTurn{
		Role: orchestrator.RoleAssistant, Answer: &answer,
	}); err != nil {
		return fmt.Errorf("saving turn: %w", err)
	}

	if len(history) == 0 && session.NeedsAutoTitle(sess.Title) {
		title := a.Orchestrator.Title(ctx, input)
		if err := a.Sessions.Rename(ctx, sess.ID, title); err != nil {
			a.Logger.Warn("auto-title failed", "session", sess.ID, "error", err)
		} else {
			sess.Title = title
		}
	}
	return nil
}

func printAnswer(answer orchestrator.StructuredAnswer) {
	if flagShowThought {
		fmt.Printf("\n[thinking] %s\n", answer.Reasoning)
	}
	if len(answer.ContextUsed) > 0 {
		fmt.Printf("\n(using %d memory snippets)\n", len(answer.ContextUsed))
	}
	fmt.Printf("\nNexus: %s\n\n", answer.Answer)
}

func resumeOrCreate(ctx context.Context, a *app.App, rawID string) (*session.Session, error) {
	if rawID == "" {
		return a.Sessions.Create(ctx, "")
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", rawID, err)
	}
	return a.Sessions.Get(ctx, id)
}
