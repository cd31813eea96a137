package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// LockEntry is one resolved dependency snapshot (spec §6 "Lockfile ...
// deterministic snapshot of resolved deps with checksums and inferred
// capabilities"). ResolvedID is a uuid assigned the first time a dependency
// is locked and then held stable across re-locks, matching the teacher's
// `Package.id`-style external-dependency identity (SPEC_FULL.md §11).
type LockEntry struct {
	Name         string   `yaml:"name"`
	Version      string   `yaml:"version"`
	ResolvedID   string   `yaml:"resolved_id"`
	Checksum     string   `yaml:"checksum"`
	Capabilities []string `yaml:"capabilities,omitempty"`
}

// Lockfile is the full `rask.lock` document.
type Lockfile struct {
	Version int         `yaml:"version"`
	Entries []LockEntry `yaml:"entries"`
}

// ParseLockfile reads and parses an existing rask.lock from disk. A missing
// file is not an error — callers treat it as "no lock yet" and generate one.
func ParseLockfile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Lockfile{Version: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading lockfile %q: %w", path, err)
	}
	var lf Lockfile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing lockfile: %w", err)
	}
	return &lf, nil
}

// WriteLockfile serializes lf back to path, deterministically (entries
// sorted by name) so repeated generation from the same resolved graph
// produces byte-identical output — required for the textual staleness
// comparison IsStale performs.
func WriteLockfile(path string, lf *Lockfile) error {
	sort.Slice(lf.Entries, func(i, j int) bool { return lf.Entries[i].Name < lf.Entries[j].Name })
	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("encoding lockfile: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// checksumOf hashes a dependency's resolved content (its manifest path or,
// for a registry dep, name+version) into the lockfile's checksum field.
func checksumOf(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}

// Generate builds a fresh Lockfile from resolved dependencies, reusing any
// ResolvedID already present in prev for a dependency of the same name (so
// re-locking doesn't needlessly churn identity), and minting a new uuid
// for a dependency seen for the first time.
func Generate(deps []Dep, capsByDep map[string][]string, prev *Lockfile) *Lockfile {
	prevID := make(map[string]string)
	if prev != nil {
		for _, e := range prev.Entries {
			prevID[e.Name] = e.ResolvedID
		}
	}
	lf := &Lockfile{Version: 1}
	for _, d := range deps {
		id, ok := prevID[d.Name]
		if !ok {
			id = uuid.NewString()
		}
		caps := capsByDep[d.Name]
		sort.Strings(caps)
		seed := d.Name + "@" + d.Version + d.Path + d.Git
		lf.Entries = append(lf.Entries, LockEntry{
			Name:         d.Name,
			Version:      d.Version,
			ResolvedID:   id,
			Checksum:     checksumOf(seed),
			Capabilities: caps,
		})
	}
	sort.Slice(lf.Entries, func(i, j int) bool { return lf.Entries[i].Name < lf.Entries[j].Name })
	return lf
}

// IsStale reports whether regenerating the lockfile from the manifest's
// current dependency set would produce different text than what's on disk
// — spec §6: "Regenerated on fetch; compared textually to detect
// staleness." A name/version/capability change, addition, or removal all
// count as stale; ResolvedID churn for an unseen dep does not, since
// Generate preserves existing ids.
func IsStale(disk *Lockfile, fresh *Lockfile) bool {
	if len(disk.Entries) != len(fresh.Entries) {
		return true
	}
	for i := range disk.Entries {
		a, b := disk.Entries[i], fresh.Entries[i]
		if a.Name != b.Name || a.Version != b.Version || a.Checksum != b.Checksum {
			return true
		}
		if len(a.Capabilities) != len(b.Capabilities) {
			return true
		}
		for j := range a.Capabilities {
			if a.Capabilities[j] != b.Capabilities[j] {
				return true
			}
		}
	}
	return false
}
