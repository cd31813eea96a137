package builtins

import (
	"sort"
	"testing"

	"github.com/rask-lang/raskc/internal/typesystem"
)

// wantInterpreterSupport is spec §8's "Built-in registry completeness"
// drift contract, grounded on `rask-interp/tests/drift_test.rs`
// (SPEC_FULL.md §12): the exact set of `receiver.method` / `module.fn`
// names the external interpreter collaborator (a Non-goal of this core,
// spec §1) is expected to implement. Since that interpreter doesn't live
// in this repo, this golden list stands in for "the interpreter's dispatch
// accepts the same method name" — a contract file the interpreter's own
// test suite is expected to assert against, the other half of the drift
// check. It intentionally mirrors registry.go's AllEntries() one-for-one:
// any registry edit that doesn't also update this list is the drift this
// test exists to catch.
var wantInterpreterSupport = []string{
	"i64.abs", "i64.to_string", "i64.to_f64", "i64.pow", "i64.checked_add", "i64.min", "i64.max",
	"i128.to_string", "i128.abs",
	"u128.to_string",
	"f64.sqrt", "f64.floor", "f64.ceil", "f64.abs", "f64.to_string", "f64.to_i64", "f64.is_nan",
	"bool.to_string",
	"char.to_string", "char.is_alpha", "char.is_digit", "char.to_upper", "char.to_lower",
	"string.len", "string.is_empty", "string.to_upper", "string.to_lower", "string.trim",
	"string.split", "string.contains", "string.starts_with", "string.parse_i64", "string.parse_f64",
	"string.chars", "string.bytes", "string.push_str",
	"Vec.push", "Vec.pop", "Vec.len", "Vec.is_empty", "Vec.get", "Vec.next",
	"Vec.iter", "Vec.map", "Vec.filter", "Vec.sort", "Vec.contains",
	"Map.get", "Map.set", "Map.remove", "Map.len", "Map.contains_key", "Map.keys", "Map.values",
	"Pool.acquire", "Pool.release", "Pool.len",
	"Handle.get",
	"Option.is_some", "Option.is_none", "Option.unwrap", "Option.unwrap_or", "Option.map", "Option.next",
	"Result.is_ok", "Result.is_err", "Result.unwrap", "Result.unwrap_or", "Result.ok", "Result.map_err",
	"File.read_to_string", "File.write", "File.metadata", "File.close",
	"Metadata.size", "Metadata.is_dir",
	"TcpListener.accept", "TcpListener.close",
	"TcpConnection.read", "TcpConnection.write", "TcpConnection.close",
	"JsonValue.as_string", "JsonValue.as_i64", "JsonValue.as_bool", "JsonValue.get", "JsonValue.to_string",
	"Duration.as_secs", "Duration.as_millis",
	"Instant.elapsed",
	"Path.exists", "Path.join", "Path.to_string",
	"Args.next", "Args.len",
	"ThreadHandle.join",
	"Sender.send",
	"Receiver.recv", "Receiver.next",
	"Shared.get", "Shared.set",
	"AtomicBool.load", "AtomicBool.store",
	"AtomicUsize.load", "AtomicUsize.store", "AtomicUsize.fetch_add",
	"AtomicU64.load", "AtomicU64.store", "AtomicU64.fetch_add",
	"fs.open", "fs.read_to_string", "fs.write", "fs.exists",
	"net.listen", "net.connect",
	"json.parse", "json.stringify",
	"time.now", "time.sleep",
	"math.sqrt", "math.pow", "math.abs",
	"random.next_u64", "random.range",
	"os.args", "os.env", "os.exec",
	"io.println", "io.print", "io.read_line",
	"cli.parse_args",
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

// TestRegistryDriftAgainstInterpreterContract is spec §8's drift property:
// the registry's name set must exactly match the interpreter-support
// contract list — neither side may silently drift from the other.
func TestRegistryDriftAgainstInterpreterContract(t *testing.T) {
	got := sortedCopy(Default().AllEntries())
	want := sortedCopy(wantInterpreterSupport)

	gotSet := make(map[string]bool, len(got))
	for _, g := range got {
		gotSet[g] = true
	}
	wantSet := make(map[string]bool, len(want))
	for _, w := range want {
		wantSet[w] = true
	}

	for _, w := range want {
		if !gotSet[w] {
			t.Errorf("interpreter-support contract expects %q but the registry no longer declares it", w)
		}
	}
	for _, g := range got {
		if !wantSet[g] {
			t.Errorf("registry declares %q but the interpreter-support contract doesn't list it (update wantInterpreterSupport)", g)
		}
	}
}

// TestEveryEntryResolvesASignature is the other half of spec §8's
// property: "for every (type, method) in the registry, the type checker's
// method-resolution step accepts at least one signature." Each entry's
// stub Params/Ret must parse and instantiate to a concrete typesystem.Type
// without panicking — the structural precondition instantiateBuiltinMethod
// (internal/typecheck) relies on for every registry lookup to succeed.
func TestEveryEntryResolvesASignature(t *testing.T) {
	reg := Default()
	var nextVar typesystem.TypeVarId
	fresh := func() typesystem.Type {
		nextVar++
		return typesystem.Var(nextVar)
	}
	check := func(recvOrModule string, methods []Method) {
		for _, meth := range methods {
			known := make(map[string]typesystem.Type)
			for _, tp := range meth.TypeParams {
				known[tp] = typesystem.I32
			}
			binder := NewBinder(known, fresh)
			for _, p := range meth.Params {
				_ = binder.Instantiate(p.Type) // the test fails only if Instantiate panics
			}
			_ = binder.Instantiate(meth.Ret)
		}
	}
	for recv, methods := range reg.ByReceiver {
		check(recv, methods)
	}
	for mod, fns := range reg.Modules {
		check(mod, fns)
	}
}
