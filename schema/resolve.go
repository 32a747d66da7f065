package schema

import (
	"fmt"
)

// MissingError reports the innermost schema name that could not be found
// while resolving a reference chain. The name is precise on purpose: it is
// what deferred decoding queues under.
type MissingError struct {
	Name string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("schema %q is not registered", e.Name)
}

// ResolvedField mirrors Field with every custom reference replaced by its
// resolved schema.
type ResolvedField struct {
	Name   string
	Prim   Primitive
	Count  int
	Enum   map[string]int64
	Nested *Resolved
}

func (f *ResolvedField) elementSize() int {
	if f.Nested != nil {
		return f.Nested.Size()
	}
	return f.Prim.Size()
}

// Width returns the total bytes the field consumes: element width times the
// element count, where a missing or zero count means one scalar element.
func (f *ResolvedField) Width() int {
	n := f.Count
	if n < 1 {
		n = 1
	}
	return f.elementSize() * n
}

// Resolved is a schema with a known byte-exact layout.
type Resolved struct {
	Fields []ResolvedField
	size   int
}

// Size returns the total byte size of one struct instance.
func (r *Resolved) Size() int {
	return r.size
}

// Resolve looks name up in the registry and resolves every custom reference
// in its transitive closure. References are assumed acyclic; a cycle is not
// detected and will not terminate.
func Resolve(name string, reg *Registry) (*Resolved, error) {
	s, ok := reg.Lookup(name)
	if !ok {
		return nil, &MissingError{Name: name}
	}
	return ResolveSchema(s, reg)
}

// ResolveSchema resolves a schema that is already in hand.
func ResolveSchema(s *Schema, reg *Registry) (*Resolved, error) {
	r := &Resolved{Fields: make([]ResolvedField, 0, len(s.Fields))}
	for i := range s.Fields {
		f := &s.Fields[i]
		rf := ResolvedField{
			Name:  f.Name,
			Prim:  f.Prim,
			Count: f.Count,
			Enum:  f.Enum,
		}
		if f.IsCustom() {
			nested, err := Resolve(f.Custom, reg)
			if err != nil {
				return nil, err
			}
			rf.Nested = nested
		}
		r.Fields = append(r.Fields, rf)
		r.size += rf.Width()
	}
	return r, nil
}
