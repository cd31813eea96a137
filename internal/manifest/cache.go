package manifest

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// ResolveCache is a local cache of package-graph resolution results keyed
// by manifest hash, backed by sqlite — the teacher uses sqlite
// (`internal/ext/cache.go`) for an LSP-adjacent cache of Go package
// introspection results; this repurposes the same storage engine for the
// resolver's own incremental cache (SPEC_FULL.md §11), short-circuiting a
// re-walk of an external dependency's AST for capability inference when
// its manifest hash hasn't changed since an earlier invocation wrote the
// cache file. Entirely local (an embedded sqlite file): no network fetch, no registry client
// (those remain external collaborators per spec §1's Non-goals).
type ResolveCache struct {
	db *sql.DB
}

// OpenResolveCache opens (creating if necessary) a sqlite-backed cache at
// path. An empty path opens an in-memory cache, useful for tests and for
// one-shot `raskc` invocations that don't want to leave a file behind.
func OpenResolveCache(path string) (*ResolveCache, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening resolve cache: %w", err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS capability_cache (
	manifest_hash TEXT NOT NULL,
	dep_name      TEXT NOT NULL,
	capabilities  TEXT NOT NULL,
	PRIMARY KEY (manifest_hash, dep_name)
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing resolve cache schema: %w", err)
	}
	return &ResolveCache{db: db}, nil
}

// Close releases the underlying sqlite connection.
func (c *ResolveCache) Close() error { return c.db.Close() }

// HashManifest computes the cache key for m: a manifest's content
// determines which capability set its deps infer to, so the hash is taken
// over the package name, version, and the sorted dep name/version/path/git
// tuple — anything that would change capability inference if edited.
func HashManifest(m *Manifest) string {
	var sb strings.Builder
	sb.WriteString(m.Package.Name)
	sb.WriteByte('@')
	sb.WriteString(m.Package.Version)
	for _, d := range m.AllDeps() {
		sb.WriteByte('|')
		sb.WriteString(d.Name)
		sb.WriteByte(',')
		sb.WriteString(d.Version)
		sb.WriteByte(',')
		sb.WriteString(d.Path)
		sb.WriteByte(',')
		sb.WriteString(d.Git)
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached capability list for depName under manifestHash,
// and whether an entry existed.
func (c *ResolveCache) Lookup(manifestHash, depName string) ([]string, bool, error) {
	row := c.db.QueryRow(`SELECT capabilities FROM capability_cache WHERE manifest_hash = ? AND dep_name = ?`,
		manifestHash, depName)
	var joined string
	if err := row.Scan(&joined); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("querying resolve cache: %w", err)
	}
	if joined == "" {
		return nil, true, nil
	}
	return strings.Split(joined, ","), true, nil
}

// Store records depName's inferred capability set under manifestHash,
// replacing any prior entry for the same key.
func (c *ResolveCache) Store(manifestHash, depName string, caps []string) error {
	_, err := c.db.Exec(
		`INSERT INTO capability_cache (manifest_hash, dep_name, capabilities) VALUES (?, ?, ?)
		 ON CONFLICT(manifest_hash, dep_name) DO UPDATE SET capabilities = excluded.capabilities`,
		manifestHash, depName, strings.Join(caps, ","))
	if err != nil {
		return fmt.Errorf("storing resolve cache entry: %w", err)
	}
	return nil
}
