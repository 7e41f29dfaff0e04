package selectexpr

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/hdlkit/clkbufmap/internal/lex"
	"github.com/hdlkit/clkbufmap/netlist"
)

// Selector answers whether a wire is a candidate for clock-buffer
// insertion under a parsed selection expression.
type Selector interface {
	Match(w *netlist.Wire) bool
}

type predicate func(w *netlist.Wire) bool

func (f predicate) Match(w *netlist.Wire) bool { return f(w) }

// Parse compiles a selection expression. An empty (or all-whitespace) expr
// is valid and returns a nil Selector: the caller should then treat every
// non-clkbuf_inhibit wire as selected.
func Parse(expr string) (Selector, error) {
	words := lexWords(expr)
	if len(words) == 0 {
		return nil, nil
	}

	var stack []predicate
	pop := func() (predicate, error) {
		if len(stack) == 0 {
			return nil, errors.New("selection expression: operator with too few operands")
		}
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return p, nil
	}

	for _, w := range words {
		switch {
		case w == "%u":
			b, err := pop()
			if err != nil {
				return nil, err
			}
			a, err := pop()
			if err != nil {
				return nil, err
			}
			stack = append(stack, func(wr *netlist.Wire) bool { return a(wr) || b(wr) })
		case w == "%d":
			b, err := pop()
			if err != nil {
				return nil, err
			}
			a, err := pop()
			if err != nil {
				return nil, err
			}
			stack = append(stack, func(wr *netlist.Wire) bool { return a(wr) && !b(wr) })
		case strings.HasPrefix(w, "w:"):
			stack = append(stack, wireGlob(w[2:]))
		case strings.HasPrefix(w, "a:"):
			stack = append(stack, attrTerm(w[2:]))
		default:
			return nil, errors.Errorf("selection expression: unrecognised term %q", w)
		}
	}

	if len(stack) != 1 {
		return nil, errors.Errorf("selection expression: %d terms left on the stack, expected 1", len(stack))
	}
	return stack[0], nil
}

func attrTerm(rest string) predicate {
	if i := strings.IndexByte(rest, '='); i >= 0 {
		name, val := rest[:i], rest[i+1:]
		return func(w *netlist.Wire) bool {
			v, ok := w.StrAttr(name)
			return ok && v == val
		}
	}
	name := rest
	return func(w *netlist.Wire) bool {
		_, ok := w.StrAttr(name)
		return ok
	}
}

// wireGlob compiles a glob pattern where '*' matches any run of characters
// (including none) and every other character must match literally. Full
// shell-glob semantics are not needed; "w:*" covers the common case.
func wireGlob(pattern string) predicate {
	parts := strings.Split(pattern, "*")
	return func(w *netlist.Wire) bool {
		return globMatch(parts, w.Name)
	}
}

func globMatch(parts []string, s string) bool {
	if len(parts) == 1 {
		return s == parts[0]
	}
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	for i := 1; i < len(parts)-1; i++ {
		idx := strings.Index(s, parts[i])
		if idx < 0 {
			return false
		}
		s = s[idx+len(parts[i]):]
	}
	return strings.HasSuffix(s, parts[len(parts)-1])
}

// lexWords tokenises expr into whitespace-separated words using the shared
// state-function lexer.
func lexWords(expr string) []string {
	l := lex.New(expr, lexInit)
	var words []string
	for {
		it := l.Lex()
		if it.Type == lex.EOF {
			return words
		}
		words = append(words, it.Value.(string))
	}
}

const wordType lex.Type = 1

const eofRune = rune(-1)

func lexInit(l *lex.Lexer) lex.StateFn {
	r := l.Next()
	switch {
	case r == eofRune:
		l.Emit(lex.EOF, nil)
		return nil
	case unicode.IsSpace(r):
		l.AcceptWhile(unicode.IsSpace)
		return nil
	default:
		return lexWord
	}
}

func lexWord(l *lex.Lexer) lex.StateFn {
	var b strings.Builder
	b.WriteRune(l.Current())
	for {
		r := l.Next()
		if r == eofRune || unicode.IsSpace(r) {
			l.Backup()
			break
		}
		b.WriteRune(r)
	}
	l.Emit(wordType, b.String())
	return nil
}
