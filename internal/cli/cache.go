package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/autobuild/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the HTTP response cache",
	}

	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePruneCommand())

	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory and its files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			dir, err := resolveCacheDir(cfg)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.out, dir)

			files, err := cache.Files(dir)
			if err != nil {
				return err
			}
			for _, f := range files {
				info, err := os.Stat(f)
				if err != nil {
					continue
				}
				printDetail(c.out, "%s  %s  %s", info.Name(),
					humanize.Bytes(uint64(info.Size())), humanize.Time(info.ModTime()))
			}
			return nil
		},
	}
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all cache files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			dir, err := resolveCacheDir(cfg)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}

			files, err := cache.Files(dir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				printInfo(c.out, "Cache is empty")
				return nil
			}

			if !yes {
				ok, err := askYesNo(c.in, c.out, fmt.Sprintf("Delete %d cache file(s) in %s?", len(files), dir), true)
				if err != nil {
					return err
				}
				if !ok {
					printWarning(c.out, "Aborted")
					return nil
				}
			}

			freed, err := cache.Clear(dir)
			if err != nil {
				return err
			}
			printSuccess(c.out, "Cleared %d cache file(s), freed %s", len(files), humanize.Bytes(uint64(freed)))
			printDetail(c.out, "Directory: %s", dir)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// cachePruneCommand creates the "cache prune" subcommand.
func (c *CLI) cachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove cache entries that were not used recently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ctx := c.commandContext(cmd)

			h, err := cache.Activate(ctx, c.activateOptions(cfg))
			if err != nil {
				return err
			}
			n, err := h.Prune(ctx, cfg.Cache.PruneAfter)
			if cerr := h.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			printSuccess(c.out, "Pruned %d entr%s unused for %s", n, plural(n, "y", "ies"), cfg.Cache.PruneAfter)
			if info, err := os.Stat(h.Path()); err == nil {
				printKeyValue(c.out, "Size", humanize.Bytes(uint64(info.Size())))
			}
			printKeyValue(c.out, "Path", h.Path())
			return nil
		},
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
