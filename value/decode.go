package value

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/TheBotlyNoob/FIRSTrun/schema"
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrUnimplemented    = errors.New("json entries are not implemented")
)

// UnknownTypeError reports a wire-type tag this decoder does not recognize.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown wire type %q", e.Type)
}

const structPrefix = "struct:"

// Decode turns a record payload into a Value according to its wire-type
// tag. struct:<Name> tags resolve Name against reg; an unresolvable name
// anywhere in the reference chain comes back as *schema.MissingError so the
// caller can defer the payload until that schema arrives.
func Decode(tag string, data []byte, reg *schema.Registry) (Value, error) {
	if name, ok := strings.CutPrefix(tag, structPrefix); ok {
		if inner, ok := strings.CutSuffix(name, "[]"); ok {
			return decodeStructArray(inner, data, reg)
		}
		res, err := schema.Resolve(name, reg)
		if err != nil {
			return nil, err
		}
		r := byteCursor{b: data}
		return decodeStruct(res, &r)
	}

	switch tag {
	// the raw data; the array form is the same blob
	case "raw", "raw[]":
		return Raw(data), nil

	// single byte (0=false, 1=true)
	case "boolean":
		if len(data) < 1 {
			return nil, ErrInsufficientData
		}
		return Boolean(data[0] != 0), nil

	// 8-byte (64-bit) signed value
	case "int64":
		if len(data) < 8 {
			return nil, ErrInsufficientData
		}
		return Int64(binary.LittleEndian.Uint64(data)), nil

	// 4-byte (32-bit) IEEE-754 value
	case "float":
		if len(data) < 4 {
			return nil, ErrInsufficientData
		}
		return Float(math.Float32frombits(binary.LittleEndian.Uint32(data))), nil

	// 8-byte (64-bit) IEEE-754 value
	case "double":
		if len(data) < 8 {
			return nil, ErrInsufficientData
		}
		return Double(math.Float64frombits(binary.LittleEndian.Uint64(data))), nil

	// UTF-8 encoded string data, lossy on bad sequences
	case "string":
		return String(lossyString(data)), nil

	// a single byte (0=false, 1=true) for each entry in the array
	case "boolean[]":
		vals := make(BooleanArray, len(data))
		for i, b := range data {
			vals[i] = b != 0
		}
		return vals, nil

	// 8-byte (64-bit) signed value for each entry in the array
	case "int64[]":
		vals := make(Int64Array, 0, len(data)/8)
		for i := 0; i+8 <= len(data); i += 8 {
			vals = append(vals, int64(binary.LittleEndian.Uint64(data[i:])))
		}
		return vals, nil

	// 4-byte (32-bit) value for each entry in the array
	case "float[]":
		vals := make(FloatArray, 0, len(data)/4)
		for i := 0; i+4 <= len(data); i += 4 {
			vals = append(vals, math.Float32frombits(binary.LittleEndian.Uint32(data[i:])))
		}
		return vals, nil

	// 8-byte (64-bit) value for each entry in the array
	case "double[]":
		vals := make(DoubleArray, 0, len(data)/8)
		for i := 0; i+8 <= len(data); i += 8 {
			vals = append(vals, math.Float64frombits(binary.LittleEndian.Uint64(data[i:])))
		}
		return vals, nil

	// a 4-byte (32-bit) element count, then per element a 4-byte length
	// followed by the UTF-8 string data
	case "string[]":
		r := byteCursor{b: data}
		count, err := r.u32()
		if err != nil {
			return nil, err
		}
		vals := make(StringArray, 0, count)
		for i := uint32(0); i < count; i++ {
			size, err := r.u32()
			if err != nil {
				return nil, err
			}
			b, err := r.take(int(size))
			if err != nil {
				return nil, err
			}
			vals = append(vals, lossyString(b))
		}
		return vals, nil

	case "json":
		return nil, ErrUnimplemented

	case "structschema":
		if !utf8.Valid(data) {
			return nil, schema.ErrInvalidText
		}
		return SchemaDef{Schema: schema.Parse(string(data))}, nil
	}

	return nil, &UnknownTypeError{Type: tag}
}

func decodeStructArray(name string, data []byte, reg *schema.Registry) (Value, error) {
	res, err := schema.Resolve(name, reg)
	if err != nil {
		return nil, err
	}
	size := res.Size()
	if size == 0 {
		return StructArray{}, nil
	}
	vals := make(StructArray, 0, len(data)/size)
	for i := 0; i+size <= len(data); i += size {
		r := byteCursor{b: data[i : i+size]}
		s, err := decodeStruct(res, &r)
		if err != nil {
			return nil, err
		}
		vals = append(vals, s)
	}
	return vals, nil
}

// decodeStruct consumes fields from the cursor strictly in schema order.
func decodeStruct(res *schema.Resolved, r *byteCursor) (Struct, error) {
	var s Struct
	for i := range res.Fields {
		f := &res.Fields[i]

		if f.Nested != nil {
			if f.Count >= 1 {
				vals := make(StructArray, 0, f.Count)
				for e := 0; e < f.Count; e++ {
					v, err := decodeStruct(f.Nested, r)
					if err != nil {
						return Struct{}, err
					}
					vals = append(vals, v)
				}
				s.add(f.Name, vals)
			} else {
				v, err := decodeStruct(f.Nested, r)
				if err != nil {
					return Struct{}, err
				}
				s.add(f.Name, v)
			}
			continue
		}

		v, err := decodePrimitiveField(f, r)
		if err != nil {
			return Struct{}, err
		}
		s.add(f.Name, v)
	}
	return s, nil
}

func decodePrimitiveField(f *schema.ResolvedField, r *byteCursor) (Value, error) {
	if f.Count >= 1 {
		// char arrays are strings by convention
		if f.Prim == schema.Char {
			b, err := r.take(f.Count)
			if err != nil {
				return nil, err
			}
			return String(lossyString(b)), nil
		}
		switch f.Prim {
		case schema.Bool:
			vals := make(BooleanArray, 0, f.Count)
			for e := 0; e < f.Count; e++ {
				v, err := decodeScalar(f.Prim, r)
				if err != nil {
					return nil, err
				}
				vals = append(vals, bool(v.(Boolean)))
			}
			return vals, nil
		case schema.Float:
			vals := make(FloatArray, 0, f.Count)
			for e := 0; e < f.Count; e++ {
				v, err := decodeScalar(f.Prim, r)
				if err != nil {
					return nil, err
				}
				vals = append(vals, float32(v.(Float)))
			}
			return vals, nil
		case schema.Double:
			vals := make(DoubleArray, 0, f.Count)
			for e := 0; e < f.Count; e++ {
				v, err := decodeScalar(f.Prim, r)
				if err != nil {
					return nil, err
				}
				vals = append(vals, float64(v.(Double)))
			}
			return vals, nil
		default:
			vals := make(Int64Array, 0, f.Count)
			for e := 0; e < f.Count; e++ {
				v, err := decodeScalar(f.Prim, r)
				if err != nil {
					return nil, err
				}
				vals = append(vals, int64(v.(Int64)))
			}
			return vals, nil
		}
	}
	return decodeScalar(f.Prim, r)
}

// decodeScalar reads one primitive. Integers of every width widen into a
// 64-bit signed scalar; uint64 wraps above 2^63-1.
func decodeScalar(p schema.Primitive, r *byteCursor) (Value, error) {
	b, err := r.take(p.Size())
	if err != nil {
		return nil, err
	}
	switch p {
	case schema.Bool:
		return Boolean(b[0] != 0), nil
	case schema.Char:
		return String(lossyString(b)), nil
	case schema.Int8:
		return Int64(int8(b[0])), nil
	case schema.Uint8:
		return Int64(b[0]), nil
	case schema.Int16:
		return Int64(int16(binary.LittleEndian.Uint16(b))), nil
	case schema.Uint16:
		return Int64(binary.LittleEndian.Uint16(b)), nil
	case schema.Int32:
		return Int64(int32(binary.LittleEndian.Uint32(b))), nil
	case schema.Uint32:
		return Int64(binary.LittleEndian.Uint32(b)), nil
	case schema.Float:
		return Float(math.Float32frombits(binary.LittleEndian.Uint32(b))), nil
	case schema.Int64, schema.Uint64:
		return Int64(binary.LittleEndian.Uint64(b)), nil
	case schema.Double:
		return Double(math.Float64frombits(binary.LittleEndian.Uint64(b))), nil
	}
	return nil, ErrInsufficientData
}

type byteCursor struct {
	b []byte
	i int
}

func (r *byteCursor) take(n int) ([]byte, error) {
	if len(r.b)-r.i < n {
		return nil, ErrInsufficientData
	}
	b := r.b[r.i : r.i+n]
	r.i += n
	return b, nil
}

func (r *byteCursor) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func lossyString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
