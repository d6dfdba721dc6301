package parser

import (
	"fmt"
	"strings"

	"github.com/wippyai/vtable/errors"
	"github.com/wippyai/vtable/idl/ast"
	"github.com/wippyai/vtable/idl/internal/token"
)

type Parser struct {
	file   string
	tokens []token.Token
	pos    int
}

func New(file string, tokens []token.Token) *Parser {
	return &Parser{file: file, tokens: tokens}
}

func (p *Parser) Parse() (*ast.File, error) {
	return p.parseFile()
}

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Type: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.tokens) {
		return token.Token{Type: token.EOF}
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) next() token.Token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *Parser) at(t token.Token) ast.Pos {
	return ast.Pos{File: p.file, Line: t.Line, Col: t.Col}
}

func (p *Parser) errorf(t token.Token, format string, args ...any) error {
	return errors.Syntax(p.at(t).String(), fmt.Sprintf(format, args...))
}

func (p *Parser) expect(typ token.Type) (token.Token, error) {
	t := p.next()
	if t.Type == token.Illegal {
		return t, p.errorf(t, "illegal character %q", t.Value)
	}
	if t.Type != typ {
		return t, p.errorf(t, "expected %v, got %v", typ, t)
	}
	return t, nil
}

func (p *Parser) expectKeyword(kw string) (token.Token, error) {
	t := p.next()
	if t.Type != token.Ident || t.Value != kw {
		return t, p.errorf(t, "expected %q, got %v", kw, t)
	}
	return t, nil
}

func (p *Parser) isKeyword(kw string) bool {
	t := p.peek()
	return t.Type == token.Ident && t.Value == kw
}

func (p *Parser) accept(typ token.Type) bool {
	if p.peek().Type == typ {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) parseFile() (*ast.File, error) {
	f := &ast.File{Name: p.file}

	if _, err := p.expectKeyword("package"); err != nil {
		return nil, err
	}
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	f.Package = name.Value
	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}

	for p.peek().Type != token.EOF {
		iface, err := p.parseInterface()
		if err != nil {
			return nil, err
		}
		f.Interfaces = append(f.Interfaces, iface)
	}

	return f, nil
}

func (p *Parser) parseInterface() (*ast.Interface, error) {
	start := p.peek()
	iface := &ast.Interface{Pos: p.at(start)}

	for {
		switch {
		case p.isKeyword("unsafe"):
			p.next()
			iface.Unsafe = true
			continue
		case p.isKeyword("auto"):
			p.next()
			iface.Auto = true
			continue
		}
		break
	}

	if _, err := p.expectKeyword("interface"); err != nil {
		return nil, err
	}
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	iface.Name = name.Value

	if p.accept(token.LAngle) {
		for {
			t := p.next()
			switch t.Type {
			case token.Ident:
				iface.Generics = append(iface.Generics, ast.Generic{Name: t.Value, Pos: p.at(t)})
			case token.Lifetime:
				iface.Generics = append(iface.Generics, ast.Generic{Name: t.Value, Pos: p.at(t), Lifetime: true})
			default:
				return nil, p.errorf(t, "expected generic parameter, got %v", t)
			}
			if p.accept(token.Comma) {
				continue
			}
			if _, err := p.expect(token.RAngle); err != nil {
				return nil, err
			}
			break
		}
	}

	if p.accept(token.Colon) {
		for {
			b, err := p.parseBound()
			if err != nil {
				return nil, err
			}
			iface.Bounds = append(iface.Bounds, b)
			if !p.accept(token.Plus) {
				break
			}
		}
	}

	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	for !p.accept(token.RBrace) {
		if p.peek().Type == token.EOF {
			return nil, p.errorf(p.peek(), "unterminated interface %q", iface.Name)
		}
		m, err := p.parseMember()
		if err != nil {
			return nil, err
		}
		iface.Members = append(iface.Members, m)
	}

	return iface, nil
}

func (p *Parser) parseBound() (ast.Bound, error) {
	t := p.next()
	switch t.Type {
	case token.Lifetime:
		return ast.Bound{Name: t.Value, Pos: p.at(t), Kind: ast.BoundLifetime}, nil
	case token.Ident:
		b := ast.Bound{Name: t.Value, Pos: p.at(t), Kind: ast.BoundInterface}
		if p.accept(token.LAngle) {
			for {
				typ, err := p.parseType()
				if err != nil {
					return b, err
				}
				b.Args = append(b.Args, typ)
				if !p.accept(token.Comma) {
					break
				}
			}
			if _, err := p.expect(token.RAngle); err != nil {
				return b, err
			}
		}
		return b, nil
	}
	return ast.Bound{}, p.errorf(t, "expected base interface, got %v", t)
}

func (p *Parser) parseMember() (ast.Member, error) {
	switch {
	case p.isKeyword("const"):
		return p.parseConst()
	case p.isKeyword("type"):
		return p.parseTypeDecl()
	}
	return p.parseMethod()
}

func (p *Parser) parseConst() (ast.Member, error) {
	kw := p.next()
	c := &ast.Const{Pos: p.at(kw)}
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	c.Name = name.Value
	if _, err := p.expect(token.Colon); err != nil {
		return nil, err
	}
	if c.Type, err = p.parseType(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Assign); err != nil {
		return nil, err
	}
	lit, ok, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, p.errorf(p.peek(), "expected literal, got %v", p.peek())
	}
	c.Value = lit
	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Parser) parseTypeDecl() (ast.Member, error) {
	kw := p.next()
	d := &ast.TypeDecl{Pos: p.at(kw)}
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	d.Name = name.Value
	if p.accept(token.Assign) {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		d.Target = &typ
	}
	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}
	return d, nil
}

func (p *Parser) parseMethod() (ast.Member, error) {
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	m := &ast.Method{Name: name.Value, Pos: p.at(name)}

	if _, err := p.expect(token.Colon); err != nil {
		return nil, err
	}
	if p.isKeyword("unsafe") {
		p.next()
		m.Unsafe = true
	}
	if p.isKeyword("extern") {
		p.next()
		abi, err := p.expect(token.String)
		if err != nil {
			return nil, err
		}
		m.ABI = abi.Value
	}
	if _, err := p.expectKeyword("func"); err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	for !p.accept(token.RParen) {
		param, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		m.Params = append(m.Params, param)
		if p.accept(token.Comma) {
			continue
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		break
	}

	if p.accept(token.Arrow) {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		m.Result = &typ
	}

	if p.isKeyword("default") {
		p.next()
		def := &ast.Default{}
		lit, ok, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		if ok {
			def.Value = &lit
		}
		m.Default = def
	}

	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *Parser) parseParam() (ast.Param, error) {
	t := p.peek()
	pos := p.at(t)

	if t.Type == token.Ident {
		switch {
		case t.Value == "self":
			p.next()
			return ast.Param{Pos: pos, Receiver: ast.RefReceiver}, nil
		case t.Value == "mut" && p.isSelfAt(1):
			p.pos += 2
			return ast.Param{Pos: pos, Receiver: ast.MutRefReceiver}, nil
		case t.Value == "own" && p.isSelfAt(1):
			p.pos += 2
			return ast.Param{Pos: pos, Receiver: ast.ValueReceiver}, nil
		}
	}

	name, err := p.expect(token.Ident)
	if err != nil {
		return ast.Param{}, err
	}
	if _, err := p.expect(token.Colon); err != nil {
		return ast.Param{}, err
	}
	typ, err := p.parseType()
	if err != nil {
		return ast.Param{}, err
	}

	param := ast.Param{Name: name.Value, Type: typ, Pos: pos}
	if param.Name == "_" {
		param.Name = ""
	}
	return param, nil
}

func (p *Parser) isSelfAt(n int) bool {
	t := p.peekAt(n)
	return t.Type == token.Ident && t.Value == "self"
}

func (p *Parser) parseType() (ast.Type, error) {
	t, err := p.expect(token.Ident)
	if err != nil {
		return ast.Type{}, err
	}

	switch t.Value {
	case "ptr", "mutptr":
		kind := ast.Ptr
		if t.Value == "mutptr" {
			kind = ast.MutPtr
		}
		if _, err := p.expect(token.LAngle); err != nil {
			return ast.Type{}, err
		}
		var elem ast.Type
		if p.isKeyword("void") {
			p.next()
			elem = ast.Type{Kind: ast.Void}
		} else if elem, err = p.parseType(); err != nil {
			return ast.Type{}, err
		}
		if _, err := p.expect(token.RAngle); err != nil {
			return ast.Type{}, err
		}
		return ast.Type{Kind: kind, Elem: &elem}, nil
	}

	if k, ok := ast.Primitive(t.Value); ok {
		return ast.Type{Kind: k}, nil
	}
	return ast.Type{}, p.errorf(t, "unknown type %q", t.Value)
}

// parseLiteral consumes a literal if one is next. ok is false when the next
// token does not start a literal.
func (p *Parser) parseLiteral() (ast.Literal, bool, error) {
	t := p.peek()
	switch t.Type {
	case token.Number:
		p.next()
		kind := ast.LitInt
		if strings.ContainsAny(t.Value, ".") {
			kind = ast.LitFloat
		}
		return ast.Literal{Text: t.Value, Kind: kind}, true, nil
	case token.Ident:
		switch t.Value {
		case "true", "false":
			p.next()
			return ast.Literal{Text: t.Value, Kind: ast.LitBool}, true, nil
		case "null":
			p.next()
			return ast.Literal{Text: t.Value, Kind: ast.LitNull}, true, nil
		}
	case token.Illegal:
		return ast.Literal{}, false, p.errorf(t, "illegal character %q", t.Value)
	}
	return ast.Literal{}, false, nil
}
