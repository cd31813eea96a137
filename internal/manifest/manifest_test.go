package manifest

import "testing"

func TestParseBuildFileBytesBasic(t *testing.T) {
	src := []byte(`
package:
  name: mylib
  version: "0.1.0"
deps:
  - name: http
    version: "1.2.0"
    allow: ["net"]
  - name: sibling
    path: ../sibling
`)
	m, err := ParseBuildFileBytes(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Package.Name != "mylib" || m.Package.Version != "0.1.0" {
		t.Fatalf("unexpected package info: %+v", m.Package)
	}
	if len(m.Deps) != 2 {
		t.Fatalf("expected 2 deps, got %d", len(m.Deps))
	}
	if !m.Deps[0].IsExternal() {
		t.Fatalf("expected 'http' dep to be external")
	}
	if m.Deps[1].IsExternal() {
		t.Fatalf("expected 'sibling' dep (has Path) to be internal")
	}
	allowed := m.AllowedCapabilities("http")
	if !allowed["net"] {
		t.Fatalf("expected 'net' capability allowed for http dep, got %v", allowed)
	}
}

func TestProfileInheritMergesFlags(t *testing.T) {
	m := &Manifest{
		Profiles: []Profile{
			{Name: "base", Opt: "0", Flags: map[string]string{"debug_info": "true"}},
			{Name: "release", Inherit: "base", Opt: "3", Flags: map[string]string{"lto": "true"}},
		},
	}
	p, ok := m.ProfileByName("release")
	if !ok {
		t.Fatalf("expected 'release' profile to resolve")
	}
	if p.Opt != "3" {
		t.Fatalf("expected release's own opt level to win, got %q", p.Opt)
	}
	if p.Flags["debug_info"] != "true" || p.Flags["lto"] != "true" {
		t.Fatalf("expected merged flags from both profiles, got %v", p.Flags)
	}
}

func TestProfileInheritBreaksCycle(t *testing.T) {
	m := &Manifest{
		Profiles: []Profile{
			{Name: "a", Inherit: "b"},
			{Name: "b", Inherit: "a"},
		},
	}
	// Must terminate rather than looping forever; exact merged result is
	// not load-bearing here, only that ProfileByName returns.
	if _, ok := m.ProfileByName("a"); !ok {
		t.Fatalf("expected profile 'a' to resolve despite the cyclic inherit chain")
	}
}

func TestGraphDetectsCycle(t *testing.T) {
	g := NewGraph()
	g.AddManifest("a", &Manifest{Deps: []Dep{{Name: "b", Path: "../b"}}})
	g.AddManifest("b", &Manifest{Deps: []Dep{{Name: "c", Path: "../c"}}})
	g.AddManifest("c", &Manifest{Deps: []Dep{{Name: "a", Path: "../a"}}})

	errs := g.CheckCycles()
	if len(errs) != 1 {
		t.Fatalf("expected exactly one cycle diagnostic, got %d: %v", len(errs), errs)
	}
}

func TestGraphAcyclicProducesNoErrors(t *testing.T) {
	g := NewGraph()
	g.AddManifest("app", &Manifest{Deps: []Dep{{Name: "lib", Path: "../lib"}}})
	g.AddManifest("lib", &Manifest{})

	if errs := g.CheckCycles(); len(errs) != 0 {
		t.Fatalf("expected no cycle diagnostics, got %v", errs)
	}
}

func TestLockfileGeneratePreservesResolvedID(t *testing.T) {
	deps := []Dep{{Name: "http", Version: "1.0.0"}}
	caps := map[string][]string{"http": {"net"}}

	first := Generate(deps, caps, nil)
	if len(first.Entries) != 1 {
		t.Fatalf("expected 1 lock entry, got %d", len(first.Entries))
	}
	id := first.Entries[0].ResolvedID
	if id == "" {
		t.Fatalf("expected a non-empty resolved id")
	}

	second := Generate(deps, caps, first)
	if second.Entries[0].ResolvedID != id {
		t.Fatalf("expected resolved id to survive a re-lock: got %q, want %q",
			second.Entries[0].ResolvedID, id)
	}
}

func TestLockfileStaleness(t *testing.T) {
	deps := []Dep{{Name: "http", Version: "1.0.0"}}
	caps := map[string][]string{"http": {"net"}}
	disk := Generate(deps, caps, nil)

	same := Generate(deps, caps, disk)
	if IsStale(disk, same) {
		t.Fatalf("expected an unchanged dependency set to not be stale")
	}

	bumped := Generate([]Dep{{Name: "http", Version: "2.0.0"}}, caps, disk)
	if !IsStale(disk, bumped) {
		t.Fatalf("expected a version bump to be reported as stale")
	}
}

func TestResolveCacheRoundTrip(t *testing.T) {
	cache, err := OpenResolveCache("")
	if err != nil {
		t.Fatalf("unexpected error opening cache: %v", err)
	}
	defer cache.Close()

	m := &Manifest{Package: PackageInfo{Name: "app", Version: "0.1.0"},
		Deps: []Dep{{Name: "http", Version: "1.0.0"}}}
	hash := HashManifest(m)

	if _, ok, err := cache.Lookup(hash, "http"); err != nil {
		t.Fatalf("unexpected lookup error: %v", err)
	} else if ok {
		t.Fatalf("expected no cache entry before Store")
	}

	if err := cache.Store(hash, "http", []string{"net"}); err != nil {
		t.Fatalf("unexpected store error: %v", err)
	}
	caps, ok, err := cache.Lookup(hash, "http")
	if err != nil {
		t.Fatalf("unexpected lookup error: %v", err)
	}
	if !ok || len(caps) != 1 || caps[0] != "net" {
		t.Fatalf("expected cached capabilities [net], got %v (ok=%v)", caps, ok)
	}
}
