package builtins

// SelfKind mirrors typesystem.SelfMode without importing it, so this
// package's registry data stays a pure, allocation-free literal table.
type SelfKind int

const (
	SelfValue SelfKind = iota
	SelfTake
	SelfMutate
	SelfNone
)

// Param is one stub-typed parameter.
type Param struct {
	Name string
	Type Stub
}

// Method is one registry entry: `{ name, self? take/mutate/value, params,
// ret_ty }` (spec §6).
type Method struct {
	Name       string
	Self       SelfKind
	TypeParams []string // receiver's own generic parameter names, e.g. Vec's "T"
	Params     []Param
	Ret        Stub
}

// Registry is the full static table (spec §6's type/module list).
type Registry struct {
	ByReceiver map[string][]Method
	Modules    map[string][]Method
}

func m(name string, self SelfKind, recvParams []string, ret Stub, params ...Param) Method {
	return Method{Name: name, Self: self, TypeParams: recvParams, Params: params, Ret: ret}
}
func p(name string, ty Stub) Param { return Param{Name: name, Type: ty} }

var registry *Registry

// Default returns the process-wide static registry, built once (spec §9
// "'Global' registries... a read-only data table initialized once per
// process").
func Default() *Registry {
	if registry != nil {
		return registry
	}
	registry = &Registry{
		ByReceiver: map[string][]Method{
			"i64": {
				m("abs", SelfValue, nil, "i64"),
				m("to_string", SelfValue, nil, "string"),
				m("to_f64", SelfValue, nil, "f64"),
				m("pow", SelfValue, nil, "i64", p("exp", "u32")),
				m("checked_add", SelfValue, nil, "i64?", p("other", "i64")),
				m("min", SelfValue, nil, "i64", p("other", "i64")),
				m("max", SelfValue, nil, "i64", p("other", "i64")),
			},
			"i128": {
				m("to_string", SelfValue, nil, "string"),
				m("abs", SelfValue, nil, "i128"),
			},
			"u128": {
				m("to_string", SelfValue, nil, "string"),
			},
			"f64": {
				m("sqrt", SelfValue, nil, "f64"),
				m("floor", SelfValue, nil, "f64"),
				m("ceil", SelfValue, nil, "f64"),
				m("abs", SelfValue, nil, "f64"),
				m("to_string", SelfValue, nil, "string"),
				m("to_i64", SelfValue, nil, "i64"),
				m("is_nan", SelfValue, nil, "bool"),
			},
			"bool": {
				m("to_string", SelfValue, nil, "string"),
			},
			"char": {
				m("to_string", SelfValue, nil, "string"),
				m("is_alpha", SelfValue, nil, "bool"),
				m("is_digit", SelfValue, nil, "bool"),
				m("to_upper", SelfValue, nil, "char"),
				m("to_lower", SelfValue, nil, "char"),
			},
			"string": {
				m("len", SelfValue, nil, "i64"),
				m("is_empty", SelfValue, nil, "bool"),
				m("to_upper", SelfValue, nil, "string"),
				m("to_lower", SelfValue, nil, "string"),
				m("trim", SelfValue, nil, "string"),
				m("split", SelfValue, nil, "Vec<string>", p("sep", "string")),
				m("contains", SelfValue, nil, "bool", p("needle", "string")),
				m("starts_with", SelfValue, nil, "bool", p("prefix", "string")),
				m("parse_i64", SelfValue, nil, "i64 or ParseError"),
				m("parse_f64", SelfValue, nil, "f64 or ParseError"),
				m("chars", SelfValue, nil, "Vec<char>"),
				m("bytes", SelfValue, nil, "Vec<u8>"),
				m("push_str", SelfMutate, nil, "unit", p("other", "string")),
			},
			"Vec": {
				m("push", SelfMutate, []string{"T"}, "unit", p("value", "T")),
				m("pop", SelfMutate, []string{"T"}, "T?"),
				m("len", SelfValue, []string{"T"}, "i64"),
				m("is_empty", SelfValue, []string{"T"}, "bool"),
				m("get", SelfValue, []string{"T"}, "T?", p("index", "i64")),
				m("next", SelfMutate, []string{"T"}, "T?"),
				m("iter", SelfValue, []string{"T"}, "Vec<T>"),
				m("map", SelfValue, []string{"T"}, "Vec<U>", p("f", "fn")),
				m("filter", SelfValue, []string{"T"}, "Vec<T>", p("f", "fn")),
				m("sort", SelfMutate, []string{"T"}, "unit"),
				m("contains", SelfValue, []string{"T"}, "bool", p("value", "T")),
			},
			"Map": {
				m("get", SelfValue, []string{"K", "V"}, "V?", p("key", "K")),
				m("set", SelfMutate, []string{"K", "V"}, "unit", p("key", "K"), p("value", "V")),
				m("remove", SelfMutate, []string{"K", "V"}, "V?", p("key", "K")),
				m("len", SelfValue, []string{"K", "V"}, "i64"),
				m("contains_key", SelfValue, []string{"K", "V"}, "bool", p("key", "K")),
				m("keys", SelfValue, []string{"K", "V"}, "Vec<K>"),
				m("values", SelfValue, []string{"K", "V"}, "Vec<V>"),
			},
			"Pool": {
				m("acquire", SelfMutate, []string{"T"}, "Handle<T> or PoolError"),
				m("release", SelfMutate, []string{"T"}, "unit", p("handle", "Handle<T>")),
				m("len", SelfValue, []string{"T"}, "i64"),
			},
			"Handle": {
				m("get", SelfValue, []string{"T"}, "T"),
			},
			"Option": {
				m("is_some", SelfValue, []string{"T"}, "bool"),
				m("is_none", SelfValue, []string{"T"}, "bool"),
				m("unwrap", SelfTake, []string{"T"}, "T"),
				m("unwrap_or", SelfTake, []string{"T"}, "T", p("default", "T")),
				m("map", SelfTake, []string{"T"}, "U?", p("f", "fn")),
				m("next", SelfMutate, []string{"T"}, "T?"),
			},
			"Result": {
				m("is_ok", SelfValue, []string{"T", "E"}, "bool"),
				m("is_err", SelfValue, []string{"T", "E"}, "bool"),
				m("unwrap", SelfTake, []string{"T", "E"}, "T"),
				m("unwrap_or", SelfTake, []string{"T", "E"}, "T", p("default", "T")),
				m("ok", SelfTake, []string{"T", "E"}, "T?"),
				m("map_err", SelfTake, []string{"T", "E"}, "T or F", p("f", "fn")),
			},
			"File": {
				m("read_to_string", SelfMutate, nil, "string or IoError"),
				m("write", SelfMutate, nil, "unit or IoError", p("data", "string")),
				m("metadata", SelfValue, nil, "Metadata or IoError"),
				m("close", SelfTake, nil, "unit"),
			},
			"Metadata": {
				m("size", SelfValue, nil, "u64"),
				m("is_dir", SelfValue, nil, "bool"),
			},
			"TcpListener": {
				m("accept", SelfMutate, nil, "TcpConnection or IoError"),
				m("close", SelfTake, nil, "unit"),
			},
			"TcpConnection": {
				m("read", SelfMutate, nil, "string or IoError"),
				m("write", SelfMutate, nil, "unit or IoError", p("data", "string")),
				m("close", SelfTake, nil, "unit"),
			},
			"JsonValue": {
				m("as_string", SelfValue, nil, "string?"),
				m("as_i64", SelfValue, nil, "i64?"),
				m("as_bool", SelfValue, nil, "bool?"),
				m("get", SelfValue, nil, "JsonValue?", p("key", "string")),
				m("to_string", SelfValue, nil, "string"),
			},
			"Duration": {
				m("as_secs", SelfValue, nil, "u64"),
				m("as_millis", SelfValue, nil, "u64"),
			},
			"Instant": {
				m("elapsed", SelfValue, nil, "Duration"),
			},
			"Path": {
				m("exists", SelfValue, nil, "bool"),
				m("join", SelfValue, nil, "Path", p("other", "string")),
				m("to_string", SelfValue, nil, "string"),
			},
			"Args": {
				m("next", SelfMutate, nil, "string?"),
				m("len", SelfValue, nil, "i64"),
			},
			"ThreadHandle": {
				m("join", SelfTake, []string{"T"}, "T or ThreadError"),
			},
			"Sender": {
				m("send", SelfValue, []string{"T"}, "unit or SendError", p("value", "T")),
			},
			"Receiver": {
				m("recv", SelfMutate, []string{"T"}, "T or RecvError"),
				m("next", SelfMutate, []string{"T"}, "T?"),
			},
			"Shared": {
				m("get", SelfValue, []string{"T"}, "T"),
				m("set", SelfValue, []string{"T"}, "unit", p("value", "T")),
			},
			"AtomicBool": {
				m("load", SelfValue, nil, "bool"),
				m("store", SelfValue, nil, "unit", p("value", "bool")),
			},
			"AtomicUsize": {
				m("load", SelfValue, nil, "u64"),
				m("store", SelfValue, nil, "unit", p("value", "u64")),
				m("fetch_add", SelfValue, nil, "u64", p("delta", "u64")),
			},
			"AtomicU64": {
				m("load", SelfValue, nil, "u64"),
				m("store", SelfValue, nil, "unit", p("value", "u64")),
				m("fetch_add", SelfValue, nil, "u64", p("delta", "u64")),
			},
		},
		Modules: map[string][]Method{
			"fs": {
				m("open", SelfNone, nil, "File or IoError", p("path", "string")),
				m("read_to_string", SelfNone, nil, "string or IoError", p("path", "string")),
				m("write", SelfNone, nil, "unit or IoError", p("path", "string"), p("data", "string")),
				m("exists", SelfNone, nil, "bool", p("path", "string")),
			},
			"net": {
				m("listen", SelfNone, nil, "TcpListener or IoError", p("addr", "string")),
				m("connect", SelfNone, nil, "TcpConnection or IoError", p("addr", "string")),
			},
			"json": {
				m("parse", SelfNone, []string{"T"}, "JsonValue or JsonError", p("text", "string")),
				m("stringify", SelfNone, nil, "string", p("value", "JsonValue")),
			},
			"time": {
				m("now", SelfNone, nil, "Instant"),
				m("sleep", SelfNone, nil, "unit", p("d", "Duration")),
			},
			"math": {
				m("sqrt", SelfNone, nil, "f64", p("x", "f64")),
				m("pow", SelfNone, nil, "f64", p("base", "f64"), p("exp", "f64")),
				m("abs", SelfNone, nil, "f64", p("x", "f64")),
			},
			"random": {
				m("next_u64", SelfNone, nil, "u64"),
				m("range", SelfNone, nil, "i64", p("lo", "i64"), p("hi", "i64")),
			},
			"os": {
				m("args", SelfNone, nil, "Args"),
				m("env", SelfNone, nil, "string?", p("key", "string")),
				m("exec", SelfNone, nil, "i64 or IoError", p("cmd", "string")),
			},
			"io": {
				m("println", SelfNone, nil, "unit", p("message", "string")),
				m("print", SelfNone, nil, "unit", p("message", "string")),
				m("read_line", SelfNone, nil, "string or IoError"),
			},
			"cli": {
				m("parse_args", SelfNone, nil, "Args"),
			},
		},
	}
	return registry
}

// Lookup finds a method by receiver head name.
func (r *Registry) Lookup(receiver, method string) (Method, bool) {
	for _, cand := range r.ByReceiver[receiver] {
		if cand.Name == method {
			return cand, true
		}
	}
	return Method{}, false
}

// LookupModule finds a module-level function.
func (r *Registry) LookupModule(module, fn string) (Method, bool) {
	for _, cand := range r.Modules[module] {
		if cand.Name == fn {
			return cand, true
		}
	}
	return Method{}, false
}

// IsModule reports whether name is a recognized built-in module.
func (r *Registry) IsModule(name string) bool {
	_, ok := r.Modules[name]
	return ok
}

// AllEntries flattens the registry to (receiver, method) pairs for the
// drift-completeness property test (spec §8).
func (r *Registry) AllEntries() []string {
	var out []string
	for recv, methods := range r.ByReceiver {
		for _, meth := range methods {
			out = append(out, recv+"."+meth.Name)
		}
	}
	for mod, fns := range r.Modules {
		for _, fn := range fns {
			out = append(out, mod+"."+fn.Name)
		}
	}
	return out
}
