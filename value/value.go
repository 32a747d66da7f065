// Package value decodes a raw record payload into a typed value tree given
// its wire-type tag.
package value

import (
	"github.com/TheBotlyNoob/FIRSTrun/schema"
)

// Value is the closed set of decoded shapes. Consumers switch exhaustively;
// there is no open dispatch.
type Value interface {
	isValue()
}

type Raw []byte

type Boolean bool

type Int64 int64

type Float float32

type Double float64

type String string

type BooleanArray []bool

type Int64Array []int64

type FloatArray []float32

type DoubleArray []float64

type StringArray []string

// Struct is an ordered field-name → value mapping decoded against a
// resolved schema. Field order is the schema's declared order.
type Struct struct {
	Names  []string
	Values []Value
}

// StructArray is a windowed sequence of struct instances sharing one schema.
type StructArray []Struct

// SchemaDef is the distinguished result of a structschema entry: the parsed,
// still-unresolved schema definition itself.
type SchemaDef struct {
	Schema *schema.Schema
}

func (Raw) isValue()          {}
func (Boolean) isValue()      {}
func (Int64) isValue()        {}
func (Float) isValue()        {}
func (Double) isValue()       {}
func (String) isValue()       {}
func (BooleanArray) isValue() {}
func (Int64Array) isValue()   {}
func (FloatArray) isValue()   {}
func (DoubleArray) isValue()  {}
func (StringArray) isValue()  {}
func (Struct) isValue()       {}
func (StructArray) isValue()  {}
func (SchemaDef) isValue()    {}

func (s *Struct) add(name string, v Value) {
	s.Names = append(s.Names, name)
	s.Values = append(s.Values, v)
}

// Get returns the named field value.
func (s Struct) Get(name string) (Value, bool) {
	for i, n := range s.Names {
		if n == name {
			return s.Values[i], true
		}
	}
	return nil, false
}

func (s Struct) Len() int {
	return len(s.Names)
}
