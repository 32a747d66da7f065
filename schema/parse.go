package schema

// The schema grammar, whitespace-insensitive between tokens:
//
//	schema     := field (';' field)* [';']
//	field      := [enum_block] typename identifier [ '[' integer ']' ]
//	enum_block := ['enum'] '{' (identifier '=' integer [',' | ';'])* '}'
//
// Parsing is greedy: fields are accepted left to right and the first field
// that fails to parse ends the schema, keeping everything parsed so far.

type parser struct {
	s string
	i int
}

// Parse parses schema text. It never fails outright; a malformed field
// truncates the result at the last good field.
func Parse(text string) *Schema {
	p := parser{s: text}
	s := &Schema{}
	for {
		p.space()
		f, ok := p.field()
		if !ok {
			break
		}
		s.Fields = append(s.Fields, f)

		p.space()
		if !p.literal(';') {
			break
		}
	}
	return s
}

func (p *parser) space() {
	for p.i < len(p.s) {
		switch p.s[p.i] {
		case ' ', '\t', '\n', '\r':
			p.i++
		default:
			return
		}
	}
}

func (p *parser) literal(c byte) bool {
	if p.i < len(p.s) && p.s[p.i] == c {
		p.i++
		return true
	}
	return false
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdent(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

func (p *parser) ident() (string, bool) {
	if p.i >= len(p.s) || !isIdentStart(p.s[p.i]) {
		return "", false
	}
	start := p.i
	for p.i < len(p.s) && isIdent(p.s[p.i]) {
		p.i++
	}
	return p.s[start:p.i], true
}

func (p *parser) integer() (int64, bool) {
	start := p.i
	neg := p.literal('-')
	digits := p.i
	for p.i < len(p.s) && p.s[p.i] >= '0' && p.s[p.i] <= '9' {
		p.i++
	}
	if p.i == digits {
		p.i = start
		return 0, false
	}
	var v int64
	for _, c := range []byte(p.s[digits:p.i]) {
		v = v*10 + int64(c-'0')
	}
	if neg {
		v = -v
	}
	return v, true
}

func (p *parser) field() (Field, bool) {
	mark := p.i

	enum, _ := p.enumBlock()
	p.space()

	typename, ok := p.ident()
	if !ok {
		p.i = mark
		return Field{}, false
	}
	p.space()
	name, ok := p.ident()
	if !ok {
		p.i = mark
		return Field{}, false
	}

	f := Field{Name: name, Enum: enum}
	if prim, ok := PrimitiveOf(typename); ok {
		f.Prim = prim
	} else {
		f.Custom = typename
	}

	p.space()
	if n, ok := p.arrayCount(); ok {
		f.Count = n
	}
	return f, true
}

// arrayCount parses '[' integer ']'. A malformed suffix is left in place
// for the caller's separator check to trip over.
func (p *parser) arrayCount() (int, bool) {
	mark := p.i
	if !p.literal('[') {
		return 0, false
	}
	p.space()
	n, ok := p.integer()
	if !ok || n < 0 {
		p.i = mark
		return 0, false
	}
	p.space()
	if !p.literal(']') {
		p.i = mark
		return 0, false
	}
	return int(n), true
}

// enumBlock parses an optional enum legend. The 'enum' keyword itself is
// optional before the braces; the legend never changes field decoding.
func (p *parser) enumBlock() (map[string]int64, bool) {
	mark := p.i

	if name, ok := p.ident(); ok && name != "enum" {
		p.i = mark
	}
	p.space()
	if !p.literal('{') {
		p.i = mark
		return nil, false
	}

	values := map[string]int64{}
	for {
		p.space()
		if p.literal('}') {
			return values, true
		}
		name, ok := p.ident()
		if !ok {
			p.i = mark
			return nil, false
		}
		p.space()
		if !p.literal('=') {
			p.i = mark
			return nil, false
		}
		p.space()
		v, ok := p.integer()
		if !ok {
			p.i = mark
			return nil, false
		}
		values[name] = v

		p.space()
		if !p.literal(',') {
			p.literal(';')
		}
	}
}
