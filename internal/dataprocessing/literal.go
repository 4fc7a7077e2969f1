package dataprocessing

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// ParseListLiteral parses a string-encoded list such as "['a', 'b']" or
// "[51.5, 0.0, 13.0]". It accepts quoted strings, integers, floats,
// True/False/None and nested lists or tuples. The second result is false
// when s is not a list literal; callers treat that as absent.
func ParseListLiteral(s string) (domain.Value, bool) {
	p := &literalParser{src: s}
	p.skipSpace()
	if p.peek() != '[' {
		return domain.Absent(), false
	}
	v, err := p.parseValue()
	if err != nil {
		return domain.Absent(), false
	}
	p.skipSpace()
	if !p.eof() {
		return domain.Absent(), false
	}
	return v, true
}

// maxLiteralDepth bounds list nesting, matching the 200 open brackets
// Python's tokenizer allows
const maxLiteralDepth = 200

type literalParser struct {
	src   string
	pos   int
	depth int
}

func (p *literalParser) eof() bool { return p.pos >= len(p.src) }

func (p *literalParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *literalParser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) parseValue() (domain.Value, error) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == '[':
		return p.parseSequence('[', ']')
	case c == '(':
		return p.parseSequence('(', ')')
	case c == '\'' || c == '"':
		s, err := p.parseString()
		if err != nil {
			return domain.Absent(), err
		}
		return domain.String(s), nil
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case c >= 'A' && c <= 'Z':
		return p.parseKeyword()
	case c == 0:
		return domain.Absent(), fmt.Errorf("unexpected end of input")
	default:
		return domain.Absent(), fmt.Errorf("unexpected character %q at %d", c, p.pos)
	}
}

func (p *literalParser) parseSequence(opener, closer byte) (domain.Value, error) {
	if p.depth >= maxLiteralDepth {
		return domain.Absent(), fmt.Errorf("too many nested brackets at %d", p.pos)
	}
	p.depth++
	defer func() { p.depth-- }()

	p.pos++ // opener
	var items []domain.Value
	for {
		p.skipSpace()
		if p.peek() == closer {
			p.pos++
			return domain.Sequence(items...), nil
		}
		item, err := p.parseValue()
		if err != nil {
			return domain.Absent(), err
		}
		items = append(items, item)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case closer:
			p.pos++
			return domain.Sequence(items...), nil
		default:
			return domain.Absent(), fmt.Errorf("expected ',' or %q at %d", closer, p.pos)
		}
	}
}

func (p *literalParser) parseString() (string, error) {
	quote := p.src[p.pos]
	p.pos++
	var sb strings.Builder
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return sb.String(), nil
		case c == '\\':
			if err := p.parseEscape(&sb); err != nil {
				return "", err
			}
		case c == '\n':
			return "", fmt.Errorf("newline in string literal at %d", p.pos)
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			sb.WriteRune(r)
			p.pos += size
		}
	}
	return "", fmt.Errorf("unterminated string literal")
}

func (p *literalParser) parseEscape(sb *strings.Builder) error {
	p.pos++ // backslash
	if p.eof() {
		return fmt.Errorf("dangling escape")
	}
	c := p.src[p.pos]
	p.pos++
	switch c {
	case '\\', '\'', '"':
		sb.WriteByte(c)
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'x':
		return p.writeCodePoint(sb, 2)
	case 'u':
		return p.writeCodePoint(sb, 4)
	case 'U':
		return p.writeCodePoint(sb, 8)
	case '\n':
		// line continuation
	default:
		sb.WriteByte('\\')
		sb.WriteByte(c)
	}
	return nil
}

func (p *literalParser) writeCodePoint(sb *strings.Builder, digits int) error {
	if p.pos+digits > len(p.src) {
		return fmt.Errorf("truncated escape at %d", p.pos)
	}
	n, err := strconv.ParseUint(p.src[p.pos:p.pos+digits], 16, 32)
	if err != nil {
		return fmt.Errorf("invalid escape at %d: %w", p.pos, err)
	}
	p.pos += digits
	sb.WriteRune(rune(n))
	return nil
}

// parseNumber reads a signed int or float literal. Decimal integers with
// leading zeros are rejected; 0x, 0o and 0b prefixes are accepted, and
// underscores may only separate digits.
func (p *literalParser) parseNumber() (domain.Value, error) {
	start := p.pos
	negative := false
	if c := p.peek(); c == '-' || c == '+' {
		negative = c == '-'
		p.pos++
	}
	body := p.pos
	based := p.pos+1 < len(p.src) && p.src[p.pos] == '0' && strings.IndexByte("xXoObB", p.src[p.pos+1]) >= 0
scan:
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '.':
			p.pos++
		case (c == '-' || c == '+') && !based && p.pos > body && (p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E'):
			p.pos++
		default:
			break scan
		}
	}
	text := p.src[body:p.pos]
	v, err := numberValue(text, negative, based)
	if err != nil {
		return domain.Absent(), fmt.Errorf("invalid number %q: %w", p.src[start:p.pos], err)
	}
	return v, nil
}

func numberValue(text string, negative, based bool) (domain.Value, error) {
	if based {
		base := map[byte]int{'x': 16, 'o': 8, 'b': 2}[text[1]|0x20]
		digits := text[2:]
		// 0x_1f is legal: an underscore may follow the prefix
		if strings.HasPrefix(digits, "_") {
			digits = digits[1:]
		}
		if !digitRun(digits, base) {
			return domain.Absent(), fmt.Errorf("bad base %d digits", base)
		}
		return intValue(strings.ReplaceAll(digits, "_", ""), base, negative)
	}

	mantissa, exponent, hasExp := text, "", false
	if i := strings.IndexAny(text, "eE"); i >= 0 {
		mantissa, exponent, hasExp = text[:i], text[i+1:], true
	}
	intPart, frac, hasDot := mantissa, "", false
	if i := strings.IndexByte(mantissa, '.'); i >= 0 {
		intPart, frac, hasDot = mantissa[:i], mantissa[i+1:], true
	}

	switch {
	case intPart == "" && frac == "":
		return domain.Absent(), fmt.Errorf("no digits")
	case intPart != "" && !digitRun(intPart, 10), frac != "" && !digitRun(frac, 10):
		return domain.Absent(), fmt.Errorf("bad digits")
	}
	if hasExp {
		if strings.HasPrefix(exponent, "-") || strings.HasPrefix(exponent, "+") {
			exponent = exponent[1:]
		}
		if !digitRun(exponent, 10) {
			return domain.Absent(), fmt.Errorf("bad exponent")
		}
	}

	if !hasDot && !hasExp {
		digits := strings.ReplaceAll(intPart, "_", "")
		if len(digits) > 1 && digits[0] == '0' && strings.Trim(digits, "0") != "" {
			return domain.Absent(), fmt.Errorf("leading zeros in decimal integer")
		}
		return intValue(digits, 10, negative)
	}

	// Out of range floats parse to an infinity with ErrRange, as 1e999 does in Python
	f, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return domain.Absent(), err
	}
	if negative {
		f = -f
	}
	return domain.Float(f), nil
}

// digitRun reports whether s is digits of base with single underscores
// between them
func digitRun(s string, base int) bool {
	if s == "" || s[0] == '_' || s[len(s)-1] == '_' || strings.Contains(s, "__") {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '_' {
			continue
		}
		d, err := strconv.ParseUint(s[i:i+1], 36, 8)
		if err != nil || int(d) >= base {
			return false
		}
	}
	return true
}

// intValue parses digits as an int cell. Integers beyond int64 widen to
// float.
func intValue(digits string, base int, negative bool) (domain.Value, error) {
	if negative {
		digits = "-" + digits
	}
	if i, err := strconv.ParseInt(digits, base, 64); err == nil {
		return domain.Int(i), nil
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return domain.Absent(), fmt.Errorf("invalid integer")
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return domain.Float(f), nil
}

func (p *literalParser) parseKeyword() (domain.Value, error) {
	start := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			p.pos++
			continue
		}
		break
	}
	switch word := p.src[start:p.pos]; word {
	case "True":
		return domain.Bool(true), nil
	case "False":
		return domain.Bool(false), nil
	case "None":
		return domain.Absent(), nil
	default:
		return domain.Absent(), fmt.Errorf("unknown name %q", word)
	}
}
