package main

import (
	"testing"

	"github.com/rask-lang/raskc/internal/ast"
	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/packages"
)

func TestParseFileArgsAcceptsJsonBeforeOrAfterPath(t *testing.T) {
	for _, args := range [][]string{
		{"-json", "foo.rk"},
		{"foo.rk", "-json"},
		{"--json", "foo.rk"},
	} {
		jsonOut, path, ok := parseFileArgs(args)
		if !ok || !jsonOut || path != "foo.rk" {
			t.Fatalf("parseFileArgs(%v) = (%v, %q, %v)", args, jsonOut, path, ok)
		}
	}
}

func TestParseFileArgsWithoutJsonFlag(t *testing.T) {
	jsonOut, path, ok := parseFileArgs([]string{"foo.rk"})
	if jsonOut || path != "foo.rk" || !ok {
		t.Fatalf("unexpected parse: (%v, %q, %v)", jsonOut, path, ok)
	}
}

func TestParseFileArgsMissingPath(t *testing.T) {
	if _, _, ok := parseFileArgs(nil); ok {
		t.Fatalf("expected ok=false for an empty argument list")
	}
}

func TestPhaseAtOrBefore(t *testing.T) {
	if !phaseAtOrBefore(diagnostics.PhaseParse, diagnostics.PhaseTypecheck) {
		t.Fatalf("expected parse to be at-or-before typecheck")
	}
	if phaseAtOrBefore(diagnostics.PhaseMirLower, diagnostics.PhaseTypecheck) {
		t.Fatalf("expected mir_lower to be after typecheck")
	}
}

func TestMergePackageProgramFlattensFiles(t *testing.T) {
	fnA := &ast.FnDecl{Name: "a"}
	fnB := &ast.FnDecl{Name: "b"}
	pkg := &packages.Package{
		Name:    "demo",
		RootDir: "demo",
		Files: []*packages.SourceFile{
			{Path: "demo/a.rk", Program: &ast.Program{Decls: []ast.Decl{fnA}}},
			{Path: "demo/b.rk", Program: &ast.Program{Decls: []ast.Decl{fnB}}},
		},
	}
	merged := mergePackageProgram(pkg)
	if len(merged.Decls) != 2 {
		t.Fatalf("expected 2 merged decls, got %d", len(merged.Decls))
	}
}
