package server

import (
	"context"
	"fmt"

	"github.com/parvel/divtracker/internal/agent"
	"github.com/spf13/cobra"

	config "github.com/parvel/divtracker/internal/config/server"
)

func NewAgentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Start the divtracker agent",
		Long:  `Start the divtracker agent, which watches the filter directories and keeps rarity models reconciled until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load server configuration: %w", err)
			}

			tracker := agent.NewAgent(cfg)
			if err := tracker.Serve(context.Background()); err != nil {
				return err
			}

			return nil
		},
	}

	return cmd
}
