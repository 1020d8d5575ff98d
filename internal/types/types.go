// Package types defines the closed semantic-type sum type the checker
// computes and the evaluator occasionally consults, grounded on the
// teacher's ast.ExprType/BasicType/PointerType pattern (a marker interface,
// one struct per variant, structural String()) generalized from Telia's
// two C-like variants to Lumen's richer structural types (spec.md §3).
package types

import (
	"fmt"
	"strings"
)

// Type is satisfied by every semantic type variant: Int, Bool, String,
// Unit, EnumType, ListType, RecordType, FnType, Unknown.
type Type interface {
	String() string
	typeNode()
}

type intType struct{}
type boolType struct{}
type stringType struct{}
type unitType struct{}
type unknownType struct{}

// Int, Bool, String, Unit, and Unknown are singletons: they compare by
// structural equality (spec.md §3) which for these is simply identity.
var (
	Int     Type = intType{}
	Bool    Type = boolType{}
	String  Type = stringType{}
	Unit    Type = unitType{}
	Unknown Type = unknownType{}
)

func (intType) String() string     { return "Int" }
func (boolType) String() string    { return "Bool" }
func (stringType) String() string  { return "String" }
func (unitType) String() string    { return "Unit" }
func (unknownType) String() string { return "Unknown" }

func (intType) typeNode()     {}
func (boolType) typeNode()    {}
func (stringType) typeNode()  {}
func (unitType) typeNode()    {}
func (unknownType) typeNode() {}

// EnumType identifies an enum by its qualified name (spec.md §3: "EnumType
// compares... by qualified name").
type EnumType struct {
	Qualifier string // name of the module that owns the definition, the root module included
	Name      string
}

func NewEnumType(qualifier, name string) EnumType { return EnumType{Qualifier: qualifier, Name: name} }
func (t EnumType) String() string {
	if t.Qualifier != "" {
		return t.Qualifier + "." + t.Name
	}
	return t.Name
}
func (t EnumType) typeNode() {}

// QualifiedName returns "qualifier.name" or "name" when unqualified, used
// as the lookup key into enum-variant tables.
func (t EnumType) QualifiedName() string { return t.String() }

type ListType struct {
	Elem Type
}

func NewListType(elem Type) ListType { return ListType{Elem: elem} }
func (t ListType) String() string    { return "[" + t.Elem.String() + "]" }
func (t ListType) typeNode()         {}

type RecordType struct {
	Fields map[string]Type
}

func NewRecordType(fields map[string]Type) RecordType { return RecordType{Fields: fields} }
func (t RecordType) String() string {
	names := make([]string, 0, len(t.Fields))
	for name := range t.Fields {
		names = append(names, name)
	}
	sortStrings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, t.Fields[name])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (t RecordType) typeNode() {}

type FnType struct {
	Params []Type
	Ret    Type
}

func NewFnType(params []Type, ret Type) FnType { return FnType{Params: params, Ret: ret} }
func (t FnType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + t.Ret.String()
}
func (t FnType) typeNode() {}

// sortStrings avoids importing sort in a hot path elsewhere; Fields is
// small (record arity), so a simple insertion sort keeps String()
// deterministic for diagnostics/tests.
func sortStrings(xs []string) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

// Equal implements spec.md §3's structural-equality rule: Types compare by
// structural equality; EnumType by qualified name.
func Equal(a, b Type) bool {
	switch av := a.(type) {
	case intType, boolType, stringType, unitType, unknownType:
		return a == b
	case EnumType:
		bv, ok := b.(EnumType)
		return ok && av.QualifiedName() == bv.QualifiedName()
	case ListType:
		bv, ok := b.(ListType)
		return ok && Equal(av.Elem, bv.Elem)
	case RecordType:
		bv, ok := b.(RecordType)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for name, t := range av.Fields {
			ot, ok := bv.Fields[name]
			if !ok || !Equal(t, ot) {
				return false
			}
		}
		return true
	case FnType:
		bv, ok := b.(FnType)
		if !ok || len(av.Params) != len(bv.Params) || !Equal(av.Ret, bv.Ret) {
			return false
		}
		for i := range av.Params {
			if !Equal(av.Params[i], bv.Params[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsUnknown reports whether t is the Unknown placeholder type.
func IsUnknown(t Type) bool {
	_, ok := t.(unknownType)
	return ok
}
