package typeexpr

import (
	"strings"
	"unicode"

	oasdoc "github.com/reoring/oasdoc"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// Parse parses a type expression such as "User[]", "Array.<string>",
// "{id: integer, tags: string[]}", "(string|null)" or "string<'email'>".
// Surrounding braces of a tag type ("{string}") must already be stripped.
func Parse(src string) (Node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	if p.peek().kind == tokEOF {
		return nil, p.errorf("empty type expression")
	}
	n, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf("unexpected %q at %d", t.text, t.pos)
	}
	return n, nil
}

// MustParse is like Parse but panics on error. Intended for tests and tables.
func MustParse(src string) Node {
	n, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return n
}

func lex(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '"' || r == '\'':
			start := i
			i++
			b := &strings.Builder{}
			closed := false
			for i < len(rs) {
				c := rs[i]
				if c == '\\' && i+1 < len(rs) && (rs[i+1] == r || rs[i+1] == '\\') {
					b.WriteRune(rs[i+1])
					i += 2
					continue
				}
				if c == r {
					closed = true
					i++
					break
				}
				b.WriteRune(c)
				i++
			}
			if !closed {
				return nil, oasdoc.Errorf(oasdoc.CodeInvalidTypeExpression, src, "unterminated string at %d", start)
			}
			toks = append(toks, token{kind: tokString, text: b.String(), pos: start})
		case isIdentStart(r):
			start := i
			for i < len(rs) && isIdentPart(rs[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: string(rs[start:i]), pos: start})
		case strings.ContainsRune("<>.[](){}|,:=*?!", r):
			toks = append(toks, token{kind: tokPunct, text: string(r), pos: i})
			i++
		default:
			return nil, oasdoc.Errorf(oasdoc.CodeInvalidTypeExpression, src, "unexpected character %q at %d", r, i)
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(rs)})
	return toks, nil
}

func isIdentStart(r rune) bool { return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) }

func isIdentPart(r rune) bool { return isIdentStart(r) || r == '-' }

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekAt(off int) token {
	if p.pos+off >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+off]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isPunct(s string) bool {
	t := p.peek()
	return t.kind == tokPunct && t.text == s
}

func (p *parser) accept(s string) bool {
	if p.isPunct(s) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(s string) error {
	if p.accept(s) {
		return nil
	}
	t := p.peek()
	if t.kind == tokEOF {
		return p.errorf("expected %q at end of input", s)
	}
	return p.errorf("expected %q, got %q at %d", s, t.text, t.pos)
}

func (p *parser) errorf(format string, args ...any) error {
	return oasdoc.Errorf(oasdoc.CodeInvalidTypeExpression, p.src, format, args...)
}

// union := prefix ('|' prefix)*
func (p *parser) parseUnion() (Node, error) {
	first, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	if !p.isPunct("|") {
		return first, nil
	}
	u := &Union{Elems: []Node{first}}
	for p.accept("|") {
		n, err := p.parsePrefix()
		if err != nil {
			return nil, err
		}
		u.Elems = append(u.Elems, n)
	}
	return u, nil
}

// prefix := '?' prefix | '!' prefix | postfix
func (p *parser) parsePrefix() (Node, error) {
	switch {
	case p.accept("?"):
		n, err := p.parsePrefix()
		if err != nil {
			return nil, err
		}
		return &Union{Elems: []Node{n, &Null{}}}, nil
	case p.accept("!"):
		return p.parsePrefix()
	}
	return p.parsePostfix()
}

// postfix := primary ('[]' | '=')*
func (p *parser) parsePostfix() (Node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isPunct("[") && p.peekAt(1).kind == tokPunct && p.peekAt(1).text == "]":
			p.pos += 2
			n = &Application{Base: &Array{}, Args: []Node{n}}
		case p.accept("="):
			n = &Optional{Elem: n}
		default:
			return n, nil
		}
	}
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.peek()
	switch t.kind {
	case tokEOF:
		return nil, p.errorf("unexpected end of input")
	case tokString:
		p.next()
		return &Literal{Value: t.text}, nil
	case tokIdent:
		return p.parseNamed()
	}
	switch t.text {
	case "(":
		p.next()
		n, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return n, nil
	case "*":
		p.next()
		return &Any{}, nil
	case "{":
		p.next()
		fields, err := p.parseArgs("}")
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			return &Object{}, nil
		}
		for _, f := range fields {
			if _, ok := f.(*Field); !ok {
				return nil, p.errorf("record entries must be \"key: type\", got %s", f)
			}
		}
		return &Application{Base: &Object{}, Args: fields}, nil
	}
	return nil, p.errorf("unexpected %q at %d", t.text, t.pos)
}

// named := ident ('.' ident)* ['.'? '<' args '>']
func (p *parser) parseNamed() (Node, error) {
	segs := []string{p.next().text}
	for p.isPunct(".") {
		nt := p.peekAt(1)
		if nt.kind == tokIdent {
			p.pos += 2
			segs = append(segs, nt.text)
			continue
		}
		if nt.kind == tokPunct && nt.text == "<" {
			p.pos++
			break
		}
		return nil, p.errorf("unexpected %q after '.' at %d", nt.text, nt.pos)
	}
	base := builtin(strings.Join(segs, "."))
	if !p.accept("<") {
		return base, nil
	}
	args, err := p.parseArgs(">")
	if err != nil {
		return nil, err
	}
	return &Application{Base: base, Args: args}, nil
}

// args := [arg (',' arg)*] close ; arg := key ':' union | union
func (p *parser) parseArgs(closing string) ([]Node, error) {
	var args []Node
	if p.accept(closing) {
		return args, nil
	}
	for {
		var arg Node
		t, nt := p.peek(), p.peekAt(1)
		if (t.kind == tokIdent || t.kind == tokString) && nt.kind == tokPunct && nt.text == ":" {
			p.pos += 2
			v, err := p.parseUnion()
			if err != nil {
				return nil, err
			}
			arg = &Field{Key: t.text, Value: v}
		} else {
			v, err := p.parseUnion()
			if err != nil {
				return nil, err
			}
			arg = v
		}
		args = append(args, arg)
		if p.accept(",") {
			continue
		}
		if err := p.expect(closing); err != nil {
			return nil, err
		}
		return args, nil
	}
}

// builtin maps reserved names onto their dedicated node kinds.
func builtin(name string) Node {
	switch name {
	case "Array", "array":
		return &Array{}
	case "Object", "object":
		return &Object{}
	case "Enum", "enum":
		return &Enum{}
	case "Date", "date":
		return &Date{}
	case "File", "file":
		return &File{}
	case "any", "Any", "mixed":
		return &Any{}
	case "null", "undefined":
		return &Null{}
	}
	return &Name{Name: name}
}
