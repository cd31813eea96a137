package config

// Version is the current raskc version.
// Set at build time via -ldflags "-X .../config.Version=...".
var Version = "0.1.0"

// SourceFileExt is the canonical extension for Rask source files (spec §6).
const SourceFileExt = ".rk"

// ManifestFileName is the declarative package manifest read by the resolver.
const ManifestFileName = "build.rk"

// LockfileName is the deterministic dependency snapshot used for staleness checks.
const LockfileName = "rask.lock"

// ResolveCacheFileName is the on-disk sqlite file (relative to a package
// directory's build.rk) that internal/manifest's ResolveCache uses to
// memoize per-dependency capability inference across invocations.
const ResolveCacheFileName = ".rask-resolve-cache.db"

// TrimSourceExt removes the .rk extension from a filename, if present.
func TrimSourceExt(name string) string {
	if len(name) >= len(SourceFileExt) && name[len(name)-len(SourceFileExt):] == SourceFileExt {
		return name[:len(name)-len(SourceFileExt)]
	}
	return name
}

// HasSourceExt returns true if path ends in the recognized source extension.
func HasSourceExt(path string) bool {
	return len(path) >= len(SourceFileExt) && path[len(path)-len(SourceFileExt):] == SourceFileExt
}

// IsTestMode indicates the process is running under `go test`; used to
// normalize output (e.g. type variable display names) for deterministic
// golden comparisons, the way the teacher normalizes its own inference
// output in test/LSP mode.
var IsTestMode = false

// SkippedDirNames are directory names never treated as packages (spec §6);
// hidden dirs (leading '.') and leading-underscore dirs are skipped by a
// separate rule in the package walker.
var SkippedDirNames = []string{"build", "vendor"}

// Built-in primitive type names recognized by the lexer/type checker.
const (
	TypeI8     = "i8"
	TypeI16    = "i16"
	TypeI32    = "i32"
	TypeI64    = "i64"
	TypeI128   = "i128"
	TypeU8     = "u8"
	TypeU16    = "u16"
	TypeU32    = "u32"
	TypeU64    = "u64"
	TypeU128   = "u128"
	TypeF32    = "f32"
	TypeF64    = "f64"
	TypeBool   = "bool"
	TypeChar   = "char"
	TypeString = "string"
	TypeUnit   = "unit"
	TypeNever  = "never"
)

// Option/Result canonical type and constructor names.
const (
	OptionTypeName = "Option"
	ResultTypeName = "Result"
	SomeCtorName   = "Some"
	NoneCtorName   = "None"
	OkCtorName     = "Ok"
	ErrCtorName    = "Err"
)

// Capability names inferred by the resolver (spec §4.4, §6).
const (
	CapNet   = "net"
	CapRead  = "read"
	CapWrite = "write"
	CapExec  = "exec"
	CapFFI   = "ffi"
)

// NoAllocPrimitives are the heap-allocating calls the @no_alloc checker scans for.
var NoAllocPrimitives = []string{
	"Vec.new", "Map.new", "Pool.new", "string.new", "format",
}
