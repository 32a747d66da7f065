// Package schema parses WPILib struct-schema text and resolves the named
// custom types it references against a registry.
package schema

import (
	"errors"

	"github.com/tidwall/rhh"
)

var (
	ErrInvalidText = errors.New("schema text is not valid utf-8")
)

// Primitive is a fixed-width struct field type.
type Primitive uint8

const (
	Invalid Primitive = iota
	Bool
	Char
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Float
	Int64
	Uint64
	Double
)

var primitiveNames = map[string]Primitive{
	"bool":    Bool,
	"char":    Char,
	"int8":    Int8,
	"uint8":   Uint8,
	"int16":   Int16,
	"uint16":  Uint16,
	"int32":   Int32,
	"uint32":  Uint32,
	"float":   Float,
	"float32": Float,
	"int64":   Int64,
	"uint64":  Uint64,
	"double":  Double,
	"float64": Double,
}

// PrimitiveOf maps a type name to its primitive, if it names one. Any other
// name is a custom reference.
func PrimitiveOf(name string) (Primitive, bool) {
	p, ok := primitiveNames[name]
	return p, ok
}

// Size returns the width of the primitive in bytes.
func (p Primitive) Size() int {
	switch p {
	case Bool, Char, Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float:
		return 4
	case Int64, Uint64, Double:
		return 8
	}
	return 0
}

func (p Primitive) String() string {
	switch p {
	case Bool:
		return "bool"
	case Char:
		return "char"
	case Int8:
		return "int8"
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Float:
		return "float"
	case Int64:
		return "int64"
	case Uint64:
		return "uint64"
	case Double:
		return "double"
	}
	return "invalid"
}

// Field is one declared field of a schema. Order of fields is byte-layout
// order and must be preserved.
//
// Count semantics follow the source format: 0 means no array suffix OR an
// explicit [0], and both decode as a single scalar element.
type Field struct {
	Name   string
	Prim   Primitive
	Custom string
	Count  int
	Enum   map[string]int64
}

// IsCustom reports whether the field references a named schema instead of a
// primitive.
func (f *Field) IsCustom() bool {
	return f.Custom != ""
}

// Schema is an ordered set of named fields, possibly still referencing
// custom type names.
type Schema struct {
	Fields []Field
}

// Registry maps schema names to their unresolved definitions. The last
// registration under a name wins.
type Registry struct {
	m *rhh.Map
}

func NewRegistry() *Registry {
	return &Registry{m: rhh.New(0)}
}

func (r *Registry) Register(name string, s *Schema) {
	r.m.Set(name, s)
}

func (r *Registry) Lookup(name string) (*Schema, bool) {
	v, ok := r.m.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*Schema), true
}

func (r *Registry) Len() int {
	return r.m.Len()
}
