package value

import (
	"github.com/mailru/easyjson/jwriter"
)

// JSON renders a decoded value tree for the materialization boundary.
// Struct field order is preserved; raw blobs render as base64. This is a
// presentation of already-decoded values, not a decode path: entries tagged
// "json" still fail ErrUnimplemented.
func JSON(v Value) ([]byte, error) {
	w := &jwriter.Writer{}
	appendJSON(w, v)
	return w.BuildBytes()
}

func appendJSON(w *jwriter.Writer, v Value) {
	switch v := v.(type) {
	case Raw:
		w.Base64Bytes(v)
	case Boolean:
		w.Bool(bool(v))
	case Int64:
		w.Int64(int64(v))
	case Float:
		w.Float32(float32(v))
	case Double:
		w.Float64(float64(v))
	case String:
		w.String(string(v))
	case BooleanArray:
		w.RawByte('[')
		for i, e := range v {
			if i > 0 {
				w.RawByte(',')
			}
			w.Bool(e)
		}
		w.RawByte(']')
	case Int64Array:
		w.RawByte('[')
		for i, e := range v {
			if i > 0 {
				w.RawByte(',')
			}
			w.Int64(e)
		}
		w.RawByte(']')
	case FloatArray:
		w.RawByte('[')
		for i, e := range v {
			if i > 0 {
				w.RawByte(',')
			}
			w.Float32(e)
		}
		w.RawByte(']')
	case DoubleArray:
		w.RawByte('[')
		for i, e := range v {
			if i > 0 {
				w.RawByte(',')
			}
			w.Float64(e)
		}
		w.RawByte(']')
	case StringArray:
		w.RawByte('[')
		for i, e := range v {
			if i > 0 {
				w.RawByte(',')
			}
			w.String(e)
		}
		w.RawByte(']')
	case Struct:
		w.RawByte('{')
		for i, name := range v.Names {
			if i > 0 {
				w.RawByte(',')
			}
			w.String(name)
			w.RawByte(':')
			appendJSON(w, v.Values[i])
		}
		w.RawByte('}')
	case StructArray:
		w.RawByte('[')
		for i, e := range v {
			if i > 0 {
				w.RawByte(',')
			}
			appendJSON(w, e)
		}
		w.RawByte(']')
	case SchemaDef:
		// render the layout legend: field name -> declared type
		w.RawByte('{')
		for i := range v.Schema.Fields {
			f := &v.Schema.Fields[i]
			if i > 0 {
				w.RawByte(',')
			}
			w.String(f.Name)
			w.RawByte(':')
			if f.IsCustom() {
				w.String(f.Custom)
			} else {
				w.String(f.Prim.String())
			}
		}
		w.RawByte('}')
	}
}
