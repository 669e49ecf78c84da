package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/matzehuels/autobuild/pkg/config"
	apperrors "github.com/matzehuels/autobuild/pkg/errors"
	"github.com/matzehuels/autobuild/pkg/httputil"
	"github.com/matzehuels/autobuild/pkg/session"
)

// Path is the build queue endpoint below the website URL.
const Path = "/api/buildqueue2"

// Fetch downloads and parses the build queue from baseURL.
func Fetch(ctx context.Context, sess *session.Session, baseURL string, cfg *config.Config) ([]*Package, error) {
	url := strings.TrimRight(baseURL, "/") + Path
	resp, err := sess.Get(ctx, url)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "fetch build queue")
	}
	if err := httputil.CheckResponse(resp); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "fetch build queue")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "read build queue")
	}
	return Parse(payload, cfg)
}

// Parse decodes a buildqueue2 payload and links every active build to the
// queued packages it depends on, and back.
func Parse(payload []byte, cfg *config.Config) ([]*Package, error) {
	var pkgs []*Package
	if err := json.Unmarshal(payload, &pkgs); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode build queue")
	}

	provides := make(map[string]*Package)
	for _, pkg := range pkgs {
		if pkg == nil {
			return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "build queue contains null entry")
		}
		pkg.Repo = pkg.RepoURL[strings.LastIndex(pkg.RepoURL, "/")+1:]
		for _, bt := range pkg.ActiveBuilds(cfg) {
			for _, name := range pkg.Builds[bt].Packages {
				provides[name] = pkg
			}
		}
	}

	for _, pkg := range pkgs {
		for _, bt := range pkg.ActiveBuilds(cfg) {
			build := pkg.Builds[bt]
			build.depends = make(map[string][]*Package)
			for _, depType := range sortedKeys(build.Depends) {
				for _, name := range build.Depends[depType] {
					dep, ok := provides[name]
					if !ok {
						return nil, apperrors.New(apperrors.ErrCodeInvalidInput,
							"%s (%s) depends on %s which is not in the queue", pkg.Name, bt, name)
					}
					build.depends[depType] = appendUnique(build.depends[depType], dep)
				}
			}
		}
	}

	// a package's reverse dependencies are shared by all of its builds
	for _, pkg := range pkgs {
		rdepends := make(map[string][]*Package)
		for _, other := range pkgs {
			for _, bt := range other.ActiveBuilds(cfg) {
				for _, deps := range other.Builds[bt].depends {
					if slices.Contains(deps, pkg) {
						rdepends[bt] = appendUnique(rdepends[bt], other)
					}
				}
			}
		}
		for _, bt := range pkg.ActiveBuilds(cfg) {
			pkg.Builds[bt].rdepends = rdepends
		}
	}

	return pkgs, nil
}

func appendUnique(list []*Package, p *Package) []*Package {
	if slices.Contains(list, p) {
		return list
	}
	return append(list, p)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Describe renders a package as "name [repo version -> queued version]".
func Describe(p *Package) string {
	return fmt.Sprintf("%s [%s -> %s]", p.Name, p.VersionRepo, p.Version)
}
