// Package value defines the closed runtime-value sum type the evaluator
// produces and consumes, following the same closed-interface-plus-one-
// struct-per-variant idiom as internal/ast (spec.md §3: Integer, String,
// Boolean, Unit, Record, List, EnumVariant, Function).
package value

import (
	"fmt"
	"strings"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/types"
)

// Value is satisfied by every runtime value variant.
type Value interface {
	Type() types.Type
	Display() string
	valueNode()
}

type Integer int64

func (Integer) Type() types.Type      { return types.Int }
func (i Integer) Display() string     { return fmt.Sprintf("%d", int64(i)) }
func (Integer) valueNode()            {}

type String string

func (String) Type() types.Type   { return types.String }
func (s String) Display() string  { return string(s) }
func (String) valueNode()         {}

type Boolean bool

func (Boolean) Type() types.Type { return types.Bool }
func (b Boolean) Display() string {
	if bool(b) {
		return "true"
	}
	return "false"
}
func (Boolean) valueNode() {}

type Unit struct{}

func (Unit) Type() types.Type  { return types.Unit }
func (Unit) Display() string   { return "()" }
func (Unit) valueNode()        {}

// Record is shared by reference for efficiency; since Lumen has no mutation
// operators on records, observable semantics stays value-like (spec.md §5).
type Record struct {
	// Order preserves literal field order for Display even though lookup
	// is by name and insertion order is semantically irrelevant (spec.md
	// §3).
	Order  []string
	Fields map[string]Value
}

func NewRecord(order []string, fields map[string]Value) *Record {
	return &Record{Order: order, Fields: fields}
}

func (r *Record) Type() types.Type {
	fields := make(map[string]types.Type, len(r.Fields))
	for name, v := range r.Fields {
		fields[name] = v.Type()
	}
	return types.NewRecordType(fields)
}

func (r *Record) Display() string {
	parts := make([]string, len(r.Order))
	for i, name := range r.Order {
		parts[i] = fmt.Sprintf("%s: %s", name, r.Fields[name].Display())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (*Record) valueNode() {}

// List is shared by reference for efficiency (spec.md §5); Lumen has no
// mutation operators on lists either.
type List struct {
	Elems []Value
	Elem  types.Type // element type, needed when Elems is empty
}

func NewList(elems []Value, elem types.Type) *List { return &List{Elems: elems, Elem: elem} }

func (l *List) Type() types.Type { return types.NewListType(l.Elem) }
func (l *List) Display() string {
	parts := make([]string, len(l.Elems))
	for i, v := range l.Elems {
		parts[i] = v.Display()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (*List) valueNode() {}

// EnumVariant is one constructed value of an enum type, e.g. G or Pair(1,2).
type EnumVariant struct {
	Enum    types.EnumType
	Variant string
	Payload []Value // nil for a payload-less variant
}

func NewEnumVariant(enum types.EnumType, variant string, payload []Value) *EnumVariant {
	return &EnumVariant{Enum: enum, Variant: variant, Payload: payload}
}

func (v *EnumVariant) Type() types.Type { return v.Enum }
func (v *EnumVariant) Display() string {
	if len(v.Payload) == 0 {
		return v.Variant
	}
	parts := make([]string, len(v.Payload))
	for i, p := range v.Payload {
		parts[i] = p.Display()
	}
	return v.Variant + "(" + strings.Join(parts, ", ") + ")"
}
func (*EnumVariant) valueNode() {}

// Function is a closure over its defining module's namespace only — never
// over the caller's scope (design notes §9: "closures only capture the
// immutable module namespace handle, never caller scopes").
type Function struct {
	Def       *ast.FnDef
	ParamTypes []types.Type
	RetType   types.Type
	Namespace Namespace // the module namespace the body resolves free names against
}

// Namespace is implemented by the evaluator's module-namespace type; it is
// declared here (rather than imported) to avoid an import cycle between
// value and eval.
type Namespace interface {
	Name() string
}

func (f *Function) Type() types.Type {
	return types.NewFnType(f.ParamTypes, f.RetType)
}
func (f *Function) Display() string { return "<fn " + f.Def.Name + ">" }
func (*Function) valueNode()        {}

// Builtin is a host-provided function such as print; it is exercised the
// same way as Function from CallExpr evaluation but has no AST body.
type Builtin struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

func (b *Builtin) Type() types.Type {
	return types.NewFnType(nil, types.Unit)
}
func (b *Builtin) Display() string { return "<builtin " + b.Name + ">" }
func (*Builtin) valueNode()        {}

// Truthy implements spec.md §4.5's closed truthiness table, used only at
// if/while/match-guard positions when the checker admitted Unknown.
func Truthy(v Value) bool {
	switch vv := v.(type) {
	case Boolean:
		return bool(vv)
	case Integer:
		return vv != 0
	case String:
		return vv != ""
	default:
		return true
	}
}
