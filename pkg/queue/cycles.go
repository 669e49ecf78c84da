package queue

import (
	"slices"
	"strings"

	"github.com/matzehuels/autobuild/pkg/config"
)

// Cycle is a pair of packages that depend on each other, ordered by name.
type Cycle struct {
	A, B *Package
}

type item struct {
	buildType string
	pkg       *Package
}

// Cycles returns every pair of queued packages that transitively depend on
// each other for a binary build type. Finished builds cut the search, and
// pairs where either side lists the other as an optional dependency are
// skipped. The result is sorted by package names.
func Cycles(pkgs []*Package, cfg *config.Config) []Cycle {
	seen := make(map[Cycle]bool)
	var cycles []Cycle

	for _, pkg := range pkgs {
		for _, bt := range pkg.BuildTypes(cfg) {
			if config.IsSourceBuildType(bt) {
				continue
			}
			for _, dep := range transitiveDeps(pkg, bt, cfg) {
				if pkg.IsOptionalDep(dep.pkg, dep.buildType, cfg) || dep.pkg.IsOptionalDep(pkg, bt, cfg) {
					continue
				}
				if !slices.Contains(transitiveDeps(dep.pkg, dep.buildType, cfg), item{bt, pkg}) {
					continue
				}
				c := Cycle{A: pkg, B: dep.pkg}
				if c.B.Name < c.A.Name {
					c.A, c.B = c.B, c.A
				}
				if !seen[c] {
					seen[c] = true
					cycles = append(cycles, c)
				}
			}
		}
	}

	slices.SortFunc(cycles, func(x, y Cycle) int {
		if n := strings.Compare(x.A.Name, y.A.Name); n != 0 {
			return n
		}
		return strings.Compare(x.B.Name, y.B.Name)
	})
	return cycles
}

// transitiveDeps walks the dependencies of pkg for bt. Finished builds are
// not expanded and not returned; the start itself is excluded.
func transitiveDeps(pkg *Package, bt string, cfg *config.Config) []item {
	start := item{bt, pkg}
	todo := []item{start}
	done := map[item]bool{start: true}
	var result []item

	for len(todo) > 0 {
		cur := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		if cur.pkg.Status(cur.buildType).Finished() {
			continue
		}
		if cur != start {
			result = append(result, cur)
		}
		deps := cur.pkg.Depends(cur.buildType, cfg)
		for _, depType := range sortedKeys(deps) {
			for _, dep := range deps[depType] {
				next := item{depType, dep}
				if !done[next] {
					done[next] = true
					todo = append(todo, next)
				}
			}
		}
	}
	return result
}
