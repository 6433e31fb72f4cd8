// Package sanitize strips structural keys that could pollute a downstream
// object model from decoded request payloads.
//
// The walker tolerates attacker-shaped input: shared and cyclic references are
// visited once, and nesting depth and total node count are bounded. A guard
// violation aborts the whole walk and is reported in the Result rather than
// by panicking or unwinding the stack.
package sanitize

import (
	"reflect"
	"unsafe"
)

const (
	// DefaultMaxDepth is the deepest container level accepted, roots are at 0
	DefaultMaxDepth = 20
	// DefaultMaxNodes bounds the number of values visited across all roots
	DefaultMaxNodes = 5000
)

// DefaultBlockedKeys are removed wherever they appear as an object key
var DefaultBlockedKeys = []string{"__proto__", "prototype", "constructor"}

// Violation identifies the guard that aborted a walk
type Violation uint8

const (
	// ViolationNone means the payload was accepted
	ViolationNone Violation = iota
	// ViolationTooDeep means a container was nested beyond MaxDepth
	ViolationTooDeep
	// ViolationTooLarge means more than MaxNodes values were reachable
	ViolationTooLarge
)

// String returns the client-facing description of the violation
func (v Violation) String() string {
	switch v {
	case ViolationTooDeep:
		return "Payload too deeply nested"
	case ViolationTooLarge:
		return "Payload too large"
	default:
		return ""
	}
}

// Result reports the outcome of a walk
type Result struct {
	Violation Violation
	// Visited is the number of values seen before the walk finished or aborted
	Visited int
	// Removed is the number of blocked keys deleted
	Removed int
}

// OK reports whether the payload passed every guard
func (r Result) OK() bool {
	return r.Violation == ViolationNone
}

// Config configures a Sanitizer
type Config struct {
	MaxDepth    int
	MaxNodes    int
	BlockedKeys []string
}

// Sanitizer removes blocked keys from decoded payloads. It holds no
// per-request state and is safe for concurrent use.
type Sanitizer struct {
	maxDepth int
	maxNodes int
	blocked  map[string]struct{}
}

// New creates a Sanitizer, zero config values take the defaults
func New(cfg Config) *Sanitizer {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.MaxNodes <= 0 {
		cfg.MaxNodes = DefaultMaxNodes
	}
	if len(cfg.BlockedKeys) == 0 {
		cfg.BlockedKeys = DefaultBlockedKeys
	}

	blocked := make(map[string]struct{}, len(cfg.BlockedKeys))
	for _, k := range cfg.BlockedKeys {
		blocked[k] = struct{}{}
	}

	return &Sanitizer{
		maxDepth: cfg.MaxDepth,
		maxNodes: cfg.MaxNodes,
		blocked:  blocked,
	}
}

// Sanitize walks every root in place. The node budget is shared by all roots,
// so splitting a payload across body, query and params does not raise it.
func (s *Sanitizer) Sanitize(roots ...any) Result {
	w := &walker{
		s:    s,
		seen: make(map[identity]struct{}),
	}
	for _, root := range roots {
		// an absent root is not a node; nil inside a container is
		if root == nil {
			continue
		}
		if v := w.visit(root, 0); v != ViolationNone {
			return Result{Violation: v, Visited: w.nodes, Removed: w.removed}
		}
	}
	return Result{Visited: w.nodes, Removed: w.removed}
}

// identity is the reference identity of a container: the map header or the
// slice backing array together with its length
type identity struct {
	ptr  unsafe.Pointer
	len  int
	kind reflect.Kind
}

// walker is the per-call visit state, never shared between calls
type walker struct {
	s       *Sanitizer
	seen    map[identity]struct{}
	nodes   int
	removed int
}

func (w *walker) visit(v any, depth int) Violation {
	w.nodes++
	if w.nodes > w.s.maxNodes {
		return ViolationTooLarge
	}

	switch t := v.(type) {
	case map[string]any:
		if depth > w.s.maxDepth {
			return ViolationTooDeep
		}
		if !w.mark(reflect.ValueOf(t)) {
			return ViolationNone
		}
		stripKeys(w, t)
		for _, child := range t {
			if r := w.visit(child, depth+1); r != ViolationNone {
				return r
			}
		}
	case []any:
		if depth > w.s.maxDepth {
			return ViolationTooDeep
		}
		if !w.mark(reflect.ValueOf(t)) {
			return ViolationNone
		}
		for _, child := range t {
			if r := w.visit(child, depth+1); r != ViolationNone {
				return r
			}
		}
	case map[string][]string:
		if depth > w.s.maxDepth {
			return ViolationTooDeep
		}
		if !w.mark(reflect.ValueOf(t)) {
			return ViolationNone
		}
		stripKeys(w, t)
		for _, values := range t {
			w.nodes += len(values)
			if w.nodes > w.s.maxNodes {
				return ViolationTooLarge
			}
		}
	case map[string]string:
		if depth > w.s.maxDepth {
			return ViolationTooDeep
		}
		if !w.mark(reflect.ValueOf(t)) {
			return ViolationNone
		}
		stripKeys(w, t)
		w.nodes += len(t)
		if w.nodes > w.s.maxNodes {
			return ViolationTooLarge
		}
	}

	return ViolationNone
}

// mark records a container and reports whether it was seen for the first time
func (w *walker) mark(rv reflect.Value) bool {
	id := identity{kind: rv.Kind()}
	switch rv.Kind() {
	case reflect.Map:
		id.ptr = rv.UnsafePointer()
	case reflect.Slice:
		if rv.Len() == 0 {
			return true
		}
		id.ptr = rv.UnsafePointer()
		id.len = rv.Len()
	}
	if id.ptr == nil {
		return true
	}
	if _, ok := w.seen[id]; ok {
		return false
	}
	w.seen[id] = struct{}{}
	return true
}

// stripKeys deletes blocked keys in place, their values are never visited
func stripKeys[V any](w *walker, m map[string]V) {
	for k := range w.s.blocked {
		if _, ok := m[k]; ok {
			delete(m, k)
			w.removed++
		}
	}
}
