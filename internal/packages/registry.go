// Package packages implements package discovery (spec §6): a directory
// containing `.rk` source files is one package; nested directories are
// separate, dotted-path packages (`pkg/sub/` is package `pkg.sub`).
package packages

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/config"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/parser"
	"github.com/rask-lang/raskc/internal/token"
)

// ID uniquely identifies one discovered package within a Registry.
type ID uint32

// skipPatterns are doublestar glob patterns matched against a directory's
// base name; any match excludes it (and everything under it) from
// discovery (spec §6 "hidden dirs, build/, vendor/, and _* are skipped").
var skipPatterns = []string{".*", "_*", "build", "vendor"}

func skippedDir(name string) bool {
	for _, pat := range skipPatterns {
		if ok, _ := doublestar.Match(pat, name); ok {
			return true
		}
	}
	for _, skip := range config.SkippedDirNames {
		if name == skip {
			return true
		}
	}
	return false
}

// SourceFile is one parsed `.rk` file within a Package.
type SourceFile struct {
	Path    string
	Program *ast.Program
}

// Package is one discovered directory of Rask source.
type Package struct {
	ID      ID
	Name    string
	Path    []string // dotted path segments, e.g. ["pkg", "sub"]
	RootDir string
	Files   []*SourceFile
	Imports []ID // populated once the resolver links packages together
}

// Path2String renders Path as Rask's dotted package-path notation.
func (p *Package) Path2String() string { return strings.Join(p.Path, ".") }

// AllDecls flattens every file's top-level declarations into one slice, in
// file order, file paths having been sorted for determinism during
// discovery.
func (p *Package) AllDecls() []ast.Decl {
	var decls []ast.Decl
	for _, f := range p.Files {
		decls = append(decls, f.Program.Decls...)
	}
	return decls
}

// Registry is the full set of packages discovered from one root, addressed
// by ID, dotted path, and bare name (spec §4.4's "Inputs: ... a whole
// package plus its PackageRegistry").
type Registry struct {
	packages   []*Package
	pathToID   map[string]ID
	nameToID   map[string]ID
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{pathToID: make(map[string]ID), nameToID: make(map[string]ID)}
}

// Discover recursively walks root, registering one Package per qualifying
// directory and parsing every `.rk` file it contains. It never aborts early:
// a lex/parse failure in one file is recorded as a diagnostic and discovery
// continues with the next file/directory, matching the rest of this
// pipeline's "accumulate errors, make maximum progress" discipline (spec §7)
// rather than the single first-error abort of the original Rust
// PackageRegistry::discover this is grounded on.
func (r *Registry) Discover(root string) (ID, []*diagnostics.DiagnosticError) {
	return r.discoverDir(root, nil)
}

func (r *Registry) discoverDir(dir string, pathPrefix []string) (ID, []*diagnostics.DiagnosticError) {
	var errs []*diagnostics.DiagnosticError

	dirName := filepath.Base(dir)
	pkgPath := append(append([]string{}, pathPrefix...), dirName)
	if len(pathPrefix) == 0 && dirName == "." {
		pkgPath = nil
	}

	pathKey := strings.Join(pkgPath, ".")
	if id, ok := r.pathToID[pathKey]; ok {
		return id, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		errs = append(errs, diagnostics.NewError(diagnostics.PhaseResolve, diagnostics.CodeResolveIO,
			token.Span{}, "reading directory '"+dir+"': "+err.Error()))
		return 0, errs
	}

	var filePaths []string
	var subdirs []string
	for _, e := range entries {
		name := e.Name()
		full := filepath.Join(dir, name)
		if e.IsDir() {
			if !skippedDir(name) {
				subdirs = append(subdirs, full)
			}
			continue
		}
		if config.HasSourceExt(name) {
			filePaths = append(filePaths, full)
		}
	}
	sort.Strings(filePaths)
	sort.Strings(subdirs)

	var files []*SourceFile
	for _, fp := range filePaths {
		data, err := os.ReadFile(fp)
		if err != nil {
			errs = append(errs, diagnostics.NewError(diagnostics.PhaseResolve, diagnostics.CodeResolveIO,
				token.Span{}, "reading file '"+fp+"': "+err.Error()))
			continue
		}
		prog, fileErrs := parser.Parse(fp, string(data))
		if len(fileErrs) != 0 {
			hasLex, hasParse := false, false
			for _, e := range fileErrs {
				if e.Phase == diagnostics.PhaseLex {
					hasLex = true
				}
				if e.Phase == diagnostics.PhaseParse {
					hasParse = true
				}
				errs = append(errs, e)
			}
			if hasLex {
				errs = append(errs, diagnostics.NewError(diagnostics.PhaseResolve, diagnostics.CodeResolveLexInPackage,
					token.Span{}, "file '"+fp+"' failed to lex"))
			}
			if hasParse {
				errs = append(errs, diagnostics.NewError(diagnostics.PhaseResolve, diagnostics.CodeResolveParseInPackage,
					token.Span{}, "file '"+fp+"' failed to parse"))
			}
		}
		files = append(files, &SourceFile{Path: fp, Program: prog})
	}

	if len(files) == 0 && len(subdirs) == 0 {
		errs = append(errs, diagnostics.NewWarning(diagnostics.PhaseResolve, diagnostics.CodeResolveEmptyPackage,
			token.Span{}, "no "+config.SourceFileExt+" files found in '"+dir+"'"))
	}

	pkgName := dirName
	if len(pkgPath) > 0 {
		pkgName = pkgPath[len(pkgPath)-1]
	} else {
		pkgName = "main"
	}

	id := ID(len(r.packages))
	pkg := &Package{ID: id, Name: pkgName, Path: pkgPath, RootDir: dir, Files: files}
	r.packages = append(r.packages, pkg)
	r.pathToID[pathKey] = id
	if _, exists := r.nameToID[pkgName]; !exists {
		r.nameToID[pkgName] = id
	}

	for _, sub := range subdirs {
		_, subErrs := r.discoverDir(sub, pkgPath)
		errs = append(errs, subErrs...)
	}

	return id, errs
}

// Get returns the package with the given id.
func (r *Registry) Get(id ID) (*Package, bool) {
	if int(id) >= len(r.packages) {
		return nil, false
	}
	return r.packages[id], true
}

// LookupPath finds a package by its full dotted path.
func (r *Registry) LookupPath(path []string) (ID, bool) {
	id, ok := r.pathToID[strings.Join(path, ".")]
	return id, ok
}

// LookupName finds a package by its bare (possibly ambiguous) name.
func (r *Registry) LookupName(name string) (ID, bool) {
	id, ok := r.nameToID[name]
	return id, ok
}

// Resolve looks up path, emitting a CodeResolvePackageNotFound diagnostic on
// miss instead of a bare bool, for callers (the resolver's package-level
// import handling) that want a diagnostic directly.
func (r *Registry) Resolve(path []string) (ID, *diagnostics.DiagnosticError) {
	if id, ok := r.LookupPath(path); ok {
		return id, nil
	}
	return 0, diagnostics.NewError(diagnostics.PhaseResolve, diagnostics.CodeResolvePackageNotFound,
		token.Span{}, "package not found: "+strings.Join(path, "."))
}

// Packages returns every discovered package, in discovery order.
func (r *Registry) Packages() []*Package { return r.packages }

// Len reports how many packages have been discovered.
func (r *Registry) Len() int { return len(r.packages) }
