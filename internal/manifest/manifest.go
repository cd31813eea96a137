// Package manifest implements spec §6's declarative package manifest
// (`build.rk`) and lockfile (`rask.lock`): parsing, the dependency DAG with
// cycle detection, and a resolve cache that short-circuits re-walking
// external dependency ASTs for capability inference across repeated
// invocations, stored in a local sqlite file.
//
// The manifest and lockfile are, per spec §6, "declarative documents" —
// the teacher's own config-adjacent surface (`internal/ext/config.go`'s
// `funxy.yaml`) is YAML, and SPEC_FULL.md §11 carries that idiom forward
// for `build.rk`/`rask.lock` rather than hand-rolling a second parser for
// the distilled spec's `package "name" "version"` / `dep "name" {...}`
// block syntax, which is otherwise undocumented beyond spec.md §6's prose.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Dep is one `dep "name"` entry (spec §6): either a registry version
// string, a local path, or a git reference. Exactly one of Version, Path,
// Git should be set; ParseBuildFile does not enforce this — the resolver's
// package-graph stage errors on an entry with none of the three.
type Dep struct {
	Name    string   `yaml:"name"`
	Version string   `yaml:"version,omitempty"`
	Path    string   `yaml:"path,omitempty"`
	Git     string   `yaml:"git,omitempty"`
	Allow   []string `yaml:"allow,omitempty"`
}

// IsExternal reports whether this dependency resolves outside the current
// workspace (a registry or git dependency, rather than a sibling package
// reachable by Path).
func (d Dep) IsExternal() bool { return d.Path == "" }

// Feature is one `feature "name" { ... }` block. Exclusive features form a
// mutually-exclusive group selected by name; additive features may be
// enabled independently.
type Feature struct {
	Name      string   `yaml:"name"`
	Exclusive bool     `yaml:"exclusive,omitempty"`
	Options   []string `yaml:"options,omitempty"`
	Default   string   `yaml:"default,omitempty"`
}

// Profile is one `profile "name" { ... }` block, optionally inheriting
// settings from a parent profile by name.
type Profile struct {
	Name    string            `yaml:"name"`
	Inherit string            `yaml:"inherit,omitempty"`
	Opt     string            `yaml:"opt,omitempty"`
	Flags   map[string]string `yaml:"flags,omitempty"`
}

// PackageInfo is the manifest's `package "name" "version"` header.
type PackageInfo struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Manifest is a fully parsed `build.rk` document (spec §6).
type Manifest struct {
	Package  PackageInfo        `yaml:"package"`
	Deps     []Dep              `yaml:"deps,omitempty"`
	DevDeps  []Dep              `yaml:"dev_deps,omitempty"` // `scope "dev" { dep ... }`
	Features []Feature          `yaml:"features,omitempty"`
	Profiles []Profile          `yaml:"profiles,omitempty"`
	Allow    map[string][]string `yaml:"allow,omitempty"` // dep name -> capability list, mirrors per-dep Dep.Allow
}

// ParseBuildFile reads and parses a manifest file from disk.
func ParseBuildFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %q: %w", path, err)
	}
	return ParseBuildFileBytes(data)
}

// ParseBuildFileBytes parses manifest content already read into memory
// (used by both ParseBuildFile and tests that avoid disk I/O).
func ParseBuildFileBytes(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.Allow == nil {
		m.Allow = make(map[string][]string)
	}
	for _, d := range m.Deps {
		if len(d.Allow) > 0 {
			m.Allow[d.Name] = d.Allow
		}
	}
	return &m, nil
}

// AllDeps returns Deps and DevDeps concatenated, the full set a package
// graph walk needs to traverse.
func (m *Manifest) AllDeps() []Dep {
	all := make([]Dep, 0, len(m.Deps)+len(m.DevDeps))
	all = append(all, m.Deps...)
	all = append(all, m.DevDeps...)
	return all
}

// AllowedCapabilities returns depName's declared `allow:` set as a lookup
// map, for internal/resolver.CheckCapabilities.
func (m *Manifest) AllowedCapabilities(depName string) map[string]bool {
	out := make(map[string]bool)
	for _, c := range m.Allow[depName] {
		out[c] = true
	}
	return out
}

// ProfileByName resolves name, following Inherit chains and merging Flags
// (child overrides parent) up to a depth of 8 to guard against a cyclic
// inherit chain a hand-edited manifest might introduce.
func (m *Manifest) ProfileByName(name string) (Profile, bool) {
	byName := make(map[string]Profile, len(m.Profiles))
	for _, p := range m.Profiles {
		byName[p.Name] = p
	}
	start, ok := byName[name]
	if !ok {
		return Profile{}, false
	}
	merged := Profile{Name: start.Name, Opt: start.Opt, Flags: map[string]string{}}
	chain := []Profile{start}
	seen := map[string]bool{start.Name: true}
	cur := start
	for cur.Inherit != "" && len(chain) < 8 {
		parent, ok := byName[cur.Inherit]
		if !ok || seen[parent.Name] {
			break
		}
		chain = append(chain, parent)
		seen[parent.Name] = true
		cur = parent
	}
	// Apply from the root parent down to the most specific child, so a
	// child's own Flags/Opt win over anything it inherited.
	for i := len(chain) - 1; i >= 0; i-- {
		p := chain[i]
		if p.Opt != "" {
			merged.Opt = p.Opt
		}
		for k, v := range p.Flags {
			merged.Flags[k] = v
		}
	}
	return merged, true
}
