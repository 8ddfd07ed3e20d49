package main

import (
	"os"

	"github.com/andrew/rag-webapp/pkg/config"
	"github.com/andrew/rag-webapp/pkg/logging"
	"github.com/andrew/rag-webapp/pkg/tui"
	"github.com/andrew/rag-webapp/pkg/wiring"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.Load()
	markdown := true

	rootCmd := &cobra.Command{
		Use:          "chat-tui",
		Short:        "Full-screen terminal chat against a RAG webhook",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.ApplyFile(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// the screen belongs to the UI, so logs only go to --log-file
			logger, closer, err := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
			if err != nil {
				return err
			}
			defer closer.Close()

			ctrl, err := wiring.NewController(cfg, logger)
			if err != nil {
				return err
			}

			m := tui.NewModel(ctrl, tui.Options{
				Markdown: markdown,
				Context:  cmd.Context(),
				Logger:   logger,
			})
			if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
				return errors.Wrap(err, "terminal UI failed")
			}
			return nil
		},
	}
	cfg.AddFlags(rootCmd.Flags())
	rootCmd.Flags().BoolVar(&markdown, "markdown", markdown, "Render answers as markdown")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
