package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/autobuild/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Autobuild inspects and drives the MSYS2 package build queue",
		Long: `Autobuild talks to the MSYS2 package website: it shows the build queue and
the dependency cycles that block it, triggers website updates and manages the
local HTTP response cache used to save API quota.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.SetLogLevel(levelForVerbosity(c.verbose))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.CountVarP(&c.verbose, "verbose", "v", "increase log verbosity (-v info, -vv debug)")
	flags.StringVar(&c.configFile, "config", "", "config file (default ./autobuild.toml when present)")
	flags.StringVar(&c.cacheDir, "cache-dir", "", "HTTP cache directory (default ./.autobuild_cache)")
	flags.BoolVar(&c.noCache, "no-cache", false, "bypass the HTTP response cache")

	root.AddCommand(c.showCommand())
	root.AddCommand(c.triggerUpdateCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
