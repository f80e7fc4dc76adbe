package engine

// preprocessSource rewrites Tessera script source into plain zygomys:
//
//   - ;-comments become //-comments
//   - :keyword becomes the string literal "__kw_keyword"
//   - kebab-case identifiers become snake_case (tile-size -> tile_size),
//     since zygomys reads a hyphen between letters as subtraction
//
// String literals, both "double" and `backtick` quoted, pass through untouched.
func preprocessSource(source string) string {
	p := &preprocessor{src: []byte(source)}
	p.out = make([]byte, 0, len(source)+len(source)/4)
	for p.pos < len(p.src) {
		p.step()
	}
	return string(p.out)
}

type preprocessor struct {
	src []byte
	out []byte
	pos int
}

func (p *preprocessor) peek(off int) (byte, bool) {
	if i := p.pos + off; i >= 0 && i < len(p.src) {
		return p.src[i], true
	}
	return 0, false
}

func (p *preprocessor) emit(n int) {
	p.out = append(p.out, p.src[p.pos:p.pos+n]...)
	p.pos += n
}

func (p *preprocessor) step() {
	c := p.src[p.pos]
	switch {
	case c == '"':
		p.quoted('"', true)
	case c == '`':
		p.quoted('`', false)
	case c == ';':
		p.comment()
	case c == ':':
		p.keyword()
	case c == '-' && p.joinsIdentifier():
		p.out = append(p.out, '_')
		p.pos++
	default:
		p.emit(1)
	}
}

// quoted copies a string literal including both delimiters.
func (p *preprocessor) quoted(delim byte, escapes bool) {
	p.emit(1)
	for p.pos < len(p.src) && p.src[p.pos] != delim {
		if escapes && p.src[p.pos] == '\\' && p.pos+1 < len(p.src) {
			p.emit(2)
			continue
		}
		p.emit(1)
	}
	if p.pos < len(p.src) {
		p.emit(1)
	}
}

func (p *preprocessor) comment() {
	p.out = append(p.out, '/', '/')
	for p.pos < len(p.src) && p.src[p.pos] == ';' {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] != '\n' {
		p.emit(1)
	}
}

func (p *preprocessor) keyword() {
	next, ok := p.peek(1)
	switch {
	case ok && next == '=': // := assignment
		p.emit(2)
	case ok && isLetter(next):
		end := p.pos + 1
		for end < len(p.src) && isKWChar(p.src[end]) {
			end++
		}
		p.out = append(p.out, '"')
		p.out = append(p.out, kwPrefix...)
		p.out = append(p.out, p.src[p.pos+1:end]...)
		p.out = append(p.out, '"')
		p.pos = end
	default:
		p.emit(1)
	}
}

// joinsIdentifier reports whether the hyphen at pos sits inside an
// identifier rather than acting as a minus sign.
func (p *preprocessor) joinsIdentifier() bool {
	prev, okPrev := p.peek(-1)
	next, okNext := p.peek(1)
	return okPrev && okNext && isIdentChar(prev) && isLetter(next)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}
