// Package queue models the package website's build queue.
//
// [Fetch] downloads /api/buildqueue2 and [Parse] turns it into packages whose
// per-architecture builds are linked to the queue packages they depend on.
// [Cycles] finds pairs of queued packages that need each other to build.
package queue

import (
	"slices"
	"strings"

	"github.com/matzehuels/autobuild/pkg/config"
)

// Status is the build state of one build type of a package.
type Status string

// Build states.
const (
	StatusFinished               Status = "finished"
	StatusFinishedButBlocked     Status = "finished-but-blocked"
	StatusFinishedButIncomplete  Status = "finished-but-incomplete"
	StatusFailedToBuild          Status = "failed-to-build"
	StatusWaitingForBuild        Status = "waiting-for-build"
	StatusWaitingForDependencies Status = "waiting-for-dependencies"
	StatusManualBuildRequired    Status = "manual-build-required"
	StatusUnknown                Status = "unknown"
)

func (s Status) String() string { return string(s) }

// Finished reports whether the build no longer needs to run.
func (s Status) Finished() bool {
	return s == StatusFinished || s == StatusFinishedButBlocked || s == StatusFinishedButIncomplete
}

// Build is one architecture build of a package.
type Build struct {
	Packages []string            `json:"packages"`
	Depends  map[string][]string `json:"depends"`
	New      bool                `json:"new"`

	status   Status
	depends  map[string][]*Package
	rdepends map[string][]*Package
}

// Package is a queued source package.
type Package struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	VersionRepo string            `json:"version_repo"`
	RepoURL     string            `json:"repo_url"`
	RepoPath    string            `json:"repo_path"`
	Source      bool              `json:"source"`
	Builds      map[string]*Build `json:"builds"`

	// Repo is the last path element of RepoURL.
	Repo string `json:"-"`
}

func (p *Package) String() string {
	return p.Name
}

// ActiveBuilds returns the build types of p that cfg builds, in cfg order.
func (p *Package) ActiveBuilds(cfg *config.Config) []string {
	var types []string
	for _, bt := range append(slices.Clone(cfg.MingwArchList), cfg.MsysArchList...) {
		if p.Builds[bt] != nil {
			types = append(types, bt)
		}
	}
	return types
}

// BuildTypes returns the active builds plus the source build types when p has a source package.
func (p *Package) BuildTypes(cfg *config.Config) []string {
	types := p.ActiveBuilds(cfg)
	if !p.Source {
		return types
	}
	var mingw, msys bool
	for _, bt := range types {
		mingw = mingw || slices.Contains(cfg.MingwArchList, bt)
		msys = msys || slices.Contains(cfg.MsysArchList, bt)
	}
	if mingw {
		types = append(types, config.MingwSrcBuildType)
	}
	if msys {
		types = append(types, config.MsysSrcBuildType)
	}
	return types
}

// Status returns the state of build type bt.
func (p *Package) Status(bt string) Status {
	if b := p.Builds[bt]; b != nil && b.status != "" {
		return b.status
	}
	return StatusUnknown
}

// SetStatus records the state of build type bt, adding the build if needed.
func (p *Package) SetStatus(bt string, s Status) {
	if p.Builds == nil {
		p.Builds = make(map[string]*Build)
	}
	b := p.Builds[bt]
	if b == nil {
		b = &Build{}
		p.Builds[bt] = b
	}
	b.status = s
}

// IsNew reports whether build type bt of p is not in the repository yet.
func (p *Package) IsNew(bt string) bool {
	b := p.Builds[bt]
	return b != nil && b.New
}

// IsOptionalDep reports whether p may be built without dep. This only holds for
// deps already in the repository, otherwise the cycle has to be fixed by hand.
func (p *Package) IsOptionalDep(dep *Package, depType string, cfg *config.Config) bool {
	return cfg.OptionalDeps.Ignored(p.Name, dep.Name) && !dep.IsNew(depType)
}

// Depends returns the queued packages p depends on for bt, keyed by their build type.
// Source build types use the build of their source architecture.
func (p *Package) Depends(bt string, cfg *config.Config) map[string][]*Package {
	if b := p.depBuild(bt, cfg); b != nil {
		return b.depends
	}
	return nil
}

// Rdepends returns the queued packages depending on p for bt, keyed by their build type.
func (p *Package) Rdepends(bt string, cfg *config.Config) map[string][]*Package {
	if b := p.depBuild(bt, cfg); b != nil {
		return b.rdepends
	}
	return nil
}

func (p *Package) depBuild(bt string, cfg *config.Config) *Build {
	switch bt {
	case config.MingwSrcBuildType:
		bt = cfg.MingwSrcArch
	case config.MsysSrcBuildType:
		bt = cfg.MsysSrcArch
	}
	return p.Builds[bt]
}

// Blocks returns the queued packages that cannot build for bt while p is not
// finished, sorted by name. Packages in cfg.IgnoreRdepPackages block nothing.
func (p *Package) Blocks(bt string, cfg *config.Config) []*Package {
	if slices.Contains(cfg.IgnoreRdepPackages, p.Name) {
		return nil
	}
	var blocked []*Package
	for _, rdeps := range p.Rdepends(bt, cfg) {
		for _, r := range rdeps {
			blocked = appendUnique(blocked, r)
		}
	}
	slices.SortFunc(blocked, func(a, b *Package) int { return strings.Compare(a.Name, b.Name) })
	return blocked
}
