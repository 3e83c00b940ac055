package lisp

import (
	"strconv"
	"strings"
)

// Fill supplies the next chunk of source text when the reader runs out in the
// middle of a form. The callback may block until more text exists; returning
// an error unwinds the in-progress read with that error.
type Fill func() (string, error)

// Reader reads forms incrementally from source text supplied in chunks. It
// only requests more text when the buffer ends inside a form; a clean end at
// top level is observable through Drained without triggering the callback.
type Reader struct {
	src  []rune
	pos  int
	fill Fill
}

// NewReader creates a reader that obtains additional source text from fill.
func NewReader(fill Fill) *Reader {
	return &Reader{fill: fill}
}

// Append adds source text to the end of the buffer.
func (r *Reader) Append(text string) {
	r.src = append(r.src, []rune(text)...)
}

// Reset discards all buffered text.
func (r *Reader) Reset() {
	r.src = r.src[:0]
	r.pos = 0
}

// Drained consumes trailing whitespace and comments without requesting more
// text, and reports whether the buffer is exhausted at a form boundary.
func (r *Reader) Drained() bool {
	for r.pos < len(r.src) {
		c := r.src[r.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			r.pos++
			continue
		}
		if c == ';' {
			for r.pos < len(r.src) && r.src[r.pos] != '\n' {
				r.pos++
			}
			continue
		}
		break
	}
	if r.pos >= len(r.src) {
		r.Reset()
		return true
	}
	return false
}

// ReadForm reads one complete form from the buffer, invoking fill whenever
// the buffer ends mid-form. The returned error is either a *SyntaxError or
// an error propagated unchanged from fill.
func (r *Reader) ReadForm() (Value, error) {
	if err := r.skipSpace(); err != nil {
		return nil, err
	}
	return r.readValue()
}

// current returns the rune at the read position, filling the buffer first if
// it has been exhausted.
func (r *Reader) current() (rune, error) {
	for r.pos >= len(r.src) {
		chunk, err := r.fill()
		if err != nil {
			return 0, err
		}
		r.Append(chunk)
	}
	return r.src[r.pos], nil
}

func (r *Reader) skipSpace() error {
	for {
		c, err := r.current()
		if err != nil {
			return err
		}
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			r.pos++
			continue
		}
		if c == ';' {
			for {
				c, err := r.current()
				if err != nil {
					return err
				}
				r.pos++
				if c == '\n' {
					break
				}
			}
			continue
		}
		return nil
	}
}

func (r *Reader) readValue() (Value, error) {
	c, err := r.current()
	if err != nil {
		return nil, err
	}
	switch c {
	case '(':
		r.pos++
		return r.readList()
	case ')':
		return nil, NewSyntaxError("unexpected )")
	case '\'':
		r.pos++
		if err := r.skipSpace(); err != nil {
			return nil, err
		}
		quoted, err := r.readValue()
		if err != nil {
			return nil, err
		}
		return List{Symbol("quote"), quoted}, nil
	case '"':
		r.pos++
		return r.readString()
	default:
		return r.readAtom()
	}
}

func (r *Reader) readList() (Value, error) {
	items := List{}
	for {
		if err := r.skipSpace(); err != nil {
			return nil, err
		}
		c, err := r.current()
		if err != nil {
			return nil, err
		}
		if c == ')' {
			r.pos++
			return items, nil
		}
		item, err := r.readValue()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

func (r *Reader) readString() (Value, error) {
	var sb strings.Builder
	for {
		c, err := r.current()
		if err != nil {
			return nil, err
		}
		r.pos++
		switch c {
		case '"':
			return Str(sb.String()), nil
		case '\\':
			esc, err := r.current()
			if err != nil {
				return nil, err
			}
			r.pos++
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '\\', '"':
				sb.WriteRune(esc)
			default:
				return nil, NewSyntaxError("unknown string escape: \\%c", esc)
			}
		default:
			sb.WriteRune(c)
		}
	}
}

func isDelimiter(c rune) bool {
	switch c {
	case '(', ')', '"', ';', '\'', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

func (r *Reader) readAtom() (Value, error) {
	start := r.pos
	for {
		c, err := r.current()
		if err != nil {
			return nil, err
		}
		if isDelimiter(c) {
			break
		}
		r.pos++
	}
	text := string(r.src[start:r.pos])
	switch text {
	case "#t":
		return Bool(true), nil
	case "#f":
		return Bool(false), nil
	}
	if n, err := strconv.ParseFloat(text, 64); err == nil {
		return Number(n), nil
	}
	if strings.HasPrefix(text, "#") {
		return nil, NewSyntaxError("unknown reader token: %s", text)
	}
	return Symbol(text), nil
}
