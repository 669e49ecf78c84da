package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/autobuild/pkg/session"
	"github.com/matzehuels/autobuild/pkg/website"
)

// triggerUpdateCommand creates the "trigger-update" command.
func (c *CLI) triggerUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "trigger-update",
		Short: "Ask the package website to refresh its package data",
		Long: `Send the update trigger to the package website. A failed request is
logged as a warning and does not fail the command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			endpoint := strings.TrimRight(cfg.WebsiteURL, "/") + "/api/trigger_update"
			return c.withSessions(c.commandContext(cmd), cfg, func(ctx context.Context, p *session.Provider) error {
				website.NewNotifier(p.Get(false), c.Logger, website.WithEndpoint(endpoint)).QueueUpdate(ctx)
				printInfo(c.out, "Update requested from %s", endpoint)
				return nil
			})
		},
	}
}
