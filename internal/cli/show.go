package cli

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/autobuild/pkg/config"
	"github.com/matzehuels/autobuild/pkg/gha"
	"github.com/matzehuels/autobuild/pkg/queue"
	"github.com/matzehuels/autobuild/pkg/session"
)

// showCommand creates the "show" command.
func (c *CLI) showCommand() *cobra.Command {
	var optionalDeps string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show all packages to be built",
		Long: `Fetch the build queue from the package website and print the dependency
cycles between queued packages, followed by the builds grouped by status.

Optional dependencies break cycles. They are given as PKG:IGNORED pairs,
comma separated, and are added to those from the config file.`,
		Example: `  autobuild show
  autobuild show --optional-deps "libuv:nghttp2,c-ares:libuv"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ApplyOptionalDeps(optionalDeps); err != nil {
				return err
			}
			return c.withSessions(c.commandContext(cmd), cfg, func(ctx context.Context, p *session.Provider) error {
				pkgs, err := c.fetchQueue(ctx, cmd.ErrOrStderr(), p.Get(false), cfg)
				if err != nil {
					return err
				}
				return writeQueue(c.out, pkgs, cfg)
			})
		},
	}

	cmd.Flags().StringVar(&optionalDeps, "optional-deps", "", "extra optional dependencies (PKG:IGNORED,...)")
	return cmd
}

func (c *CLI) fetchQueue(ctx context.Context, stderr io.Writer, sess *session.Session, cfg *config.Config) ([]*queue.Package, error) {
	prog := newProgress(loggerFromContext(ctx))
	spin := newSpinner(ctx, stderr, "Fetching build queue...")
	spin.Start()
	pkgs, err := queue.Fetch(ctx, sess, cfg.WebsiteURL, cfg)
	spin.Stop()
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Fetched %d queued packages", len(pkgs)))
	return pkgs, nil
}

// buildRow is one build type of one queued package.
type buildRow struct {
	pkg       *queue.Package
	buildType string
	status    queue.Status
}

// writeQueue prints the cycle table and one table per non-empty status
// bucket, each in its own log group.
func writeQueue(w io.Writer, pkgs []*queue.Package, cfg *config.Config) error {
	if err := writeCycles(w, pkgs, cfg); err != nil {
		return err
	}

	var todo, waiting, failed, done, queued []buildRow
	for _, pkg := range pkgs {
		for _, bt := range pkg.BuildTypes(cfg) {
			r := buildRow{pkg: pkg, buildType: bt, status: pkg.Status(bt)}
			switch r.status {
			case queue.StatusWaitingForBuild:
				todo = append(todo, r)
			case queue.StatusWaitingForDependencies, queue.StatusManualBuildRequired:
				waiting = append(waiting, r)
			case queue.StatusFailedToBuild:
				failed = append(failed, r)
			case queue.StatusUnknown:
				queued = append(queued, r)
			default:
				done = append(done, r)
			}
		}
	}

	order := cfg.AllBuildTypes()
	for _, rows := range [][]buildRow{todo, waiting, failed, done, queued} {
		slices.SortStableFunc(rows, func(a, b buildRow) int {
			return cmp.Compare(slices.Index(order, a.buildType), slices.Index(order, b.buildType))
		})
	}

	for _, b := range []struct {
		name string
		rows []buildRow
	}{
		{"QUEUED", queued},
		{"TODO", todo},
		{"WAITING", waiting},
		{"FAILED", failed},
		{"DONE", done},
	} {
		if len(b.rows) == 0 {
			continue
		}
		if err := writeBuilds(w, b.name, b.rows, cfg); err != nil {
			return err
		}
	}
	return nil
}

func writeCycles(w io.Writer, pkgs []*queue.Package, cfg *config.Config) error {
	cycles := queue.Cycles(pkgs, cfg)
	if len(cycles) == 0 {
		return nil
	}
	return gha.Group(w, fmt.Sprintf("Dependency Cycles (%d)", len(cycles)), func() error {
		rows := make([][]string, len(cycles))
		for i, cy := range cycles {
			rows[i] = []string{queue.Describe(cy.A), "<-->", queue.Describe(cy.B)}
		}
		_, err := fmt.Fprintln(w, renderTable([]string{"Package", "", "Package"}, rows, nil))
		return err
	})
}

func writeBuilds(w io.Writer, name string, items []buildRow, cfg *config.Config) error {
	return gha.Group(w, fmt.Sprintf("%s (%d)", name, len(items)), func() error {
		rows := make([][]string, len(items))
		for i, r := range items {
			var blocks []string
			for _, b := range r.pkg.Blocks(r.buildType, cfg) {
				blocks = append(blocks, b.Name)
			}
			rows[i] = []string{r.pkg.Name, r.buildType, r.pkg.Version, r.status.String(), strings.Join(blocks, ", ")}
		}
		isNew := func(row int) bool { return items[row].pkg.IsNew(items[row].buildType) }
		_, err := fmt.Fprintln(w, renderTable([]string{"Package", "Build", "Version", "Status", "Blocks"}, rows, isNew))
		return err
	})
}
