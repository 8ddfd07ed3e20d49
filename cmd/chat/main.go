package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/andrew/rag-webapp/pkg/chat"
	"github.com/andrew/rag-webapp/pkg/config"
	"github.com/andrew/rag-webapp/pkg/logging"
	"github.com/andrew/rag-webapp/pkg/models"
	"github.com/andrew/rag-webapp/pkg/wiring"
	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	boldGreen = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan  = color.New(color.FgCyan, color.Bold).SprintFunc()
	boldRed   = color.New(color.FgRed, color.Bold).SprintFunc()
	faint     = color.New(color.Faint).SprintFunc()
)

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions of a RAG webhook from the terminal",
		Long: "Interactive line-based chat. Each line is sent to the webhook as one question.\n" +
			"End a line with a backslash to continue the question on the next line.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.ApplyFile(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, cfg)
		},
	}
	cfg.AddFlags(rootCmd.PersistentFlags())

	askCmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Send one question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, cfg, strings.Join(args, " "))
		},
	}
	rootCmd.AddCommand(askCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newController sets up logging and the controller. Logs stay off the terminal unless a
// log file or an explicit level was requested.
func newController(cmd *cobra.Command, cfg *config.Config) (*chat.Controller, io.Closer, error) {
	opts := logging.Options{Level: cfg.LogLevel, File: cfg.LogFile}
	if cmd.Flags().Changed("log-level") {
		opts.Console = os.Stderr
	}
	logger, closer, err := logging.Setup(opts)
	if err != nil {
		return nil, nil, err
	}

	ctrl, err := wiring.NewController(cfg, logger)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return ctrl, closer, nil
}

func runAsk(cmd *cobra.Command, cfg *config.Config, question string) error {
	cfg.Mode = string(chat.ModeSingle)
	ctrl, closer, err := newController(cmd, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	state := ctrl.Submit(cmd.Context(), chat.State{Draft: question})
	if state.Error != "" {
		// cobra prefixes returned errors with its own "Error: "
		return errors.New(strings.TrimPrefix(state.Error, "Error: "))
	}

	fmt.Fprintln(cmd.OutOrStdout(), render(state.Answer))
	return nil
}

func runREPL(cmd *cobra.Command, cfg *config.Config) error {
	ctrl, closer, err := newController(cmd, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, boldGreen("RAG Chat"))
	if url := ctrl.WebhookURL(); url != "" {
		fmt.Fprintf(out, "Webhook: %s\n", boldCyan(url))
	} else {
		fmt.Fprintf(out, "Webhook: %s\n", boldRed("not configured"))
	}
	fmt.Fprintf(out, "Mode: %s\n", ctrl.Mode())
	fmt.Fprintln(out, "Type your question and press Enter. Type 'exit' or press Ctrl+D to quit.")
	fmt.Fprintln(out)

	return chatLoop(ctx, ctrl, cmd.InOrStdin(), out)
}

// chatLoop reads questions until EOF or exit and prints each outcome
func chatLoop(ctx context.Context, ctrl *chat.Controller, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	state := chat.State{}

	for {
		fmt.Fprint(out, boldGreen("You: "))
		draft, ok := readQuestion(scanner, out)
		if !ok {
			break
		}

		trimmed := strings.ToLower(strings.TrimSpace(draft))
		if trimmed == "" {
			continue
		}
		if trimmed == "exit" || trimmed == "quit" {
			break
		}

		state.Draft = draft
		prevLen := len(state.Transcript)
		state = ctrl.Submit(ctx, state)
		printOutcome(out, ctrl.Mode(), state, prevLen)

		if ctx.Err() != nil {
			break
		}
	}

	fmt.Fprintln(out, "\nGoodbye!")
	return scanner.Err()
}

// readQuestion joins lines ending in a backslash into one multi-line question
func readQuestion(scanner *bufio.Scanner, out io.Writer) (string, bool) {
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasSuffix(line, `\`) {
			lines = append(lines, strings.TrimSuffix(line, `\`))
			fmt.Fprint(out, faint("...  "))
			continue
		}
		lines = append(lines, line)
		return strings.Join(lines, "\n"), true
	}
	if len(lines) > 0 {
		return strings.Join(lines, "\n"), true
	}
	return "", false
}

func printOutcome(out io.Writer, mode chat.Mode, state chat.State, prevLen int) {
	if state.Error != "" {
		fmt.Fprintf(out, "%s\n\n", boldRed(state.Error))
		return
	}

	switch mode {
	case chat.ModeSingle:
		if state.Answer != "" {
			fmt.Fprintf(out, "%s\n%s\n\n", boldCyan("Answer:"), render(state.Answer))
		}
	default:
		for _, msg := range state.Transcript[min(prevLen, len(state.Transcript)):] {
			if msg.Role == models.RoleAssistant {
				fmt.Fprintf(out, "%s\n%s\n\n", boldCyan("Assistant:"), render(msg.Text))
			}
		}
	}
}

// render formats markdown answers when stdout is a terminal and leaves them raw otherwise
func render(text string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return text
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		log.Debug().Err(err).Msg("markdown renderer unavailable")
		return text
	}
	rendered, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}
