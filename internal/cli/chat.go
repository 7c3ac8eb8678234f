package cli

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AmonApolonio/lookchat/internal/chat"
	"github.com/AmonApolonio/lookchat/internal/client"
	"github.com/AmonApolonio/lookchat/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with the AI personal shopper.

The client keeps a short poll running against the server for the lifetime
of the conversation; look recommendations stream into the transcript as
the backend produces them.

Examples:
  lookchat chat
  lookchat chat --server http://shop.example.com:8080
  lookchat chat --poll-interval 1s -v`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	logger, err := buildLogger()
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer logger.Sync()

	api := client.New(serverURL)
	session := chat.NewSession(api, logger)
	poller := chat.NewPoller(api, session, pollInterval, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller.Start(ctx)
	defer poller.Stop()

	program := tea.NewProgram(tui.New(session, poller, api))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run chat: %w", err)
	}
	return nil
}

// buildLogger returns a no-op logger unless verbose is set; the TUI owns
// the terminal, so verbose logs go to a file.
func buildLogger() (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"lookchat.log"}
	cfg.ErrorOutputPaths = []string{"lookchat.log"}
	return cfg.Build()
}
