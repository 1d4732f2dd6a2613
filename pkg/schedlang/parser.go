package schedlang

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/patrickspencer/scheduleexpr/pkg/block"
	"github.com/patrickspencer/scheduleexpr/pkg/interval"
	"github.com/patrickspencer/scheduleexpr/pkg/scherr"
)

// ParseExpression parses a schedule expression into a block.Block tree
// per the grammar in spec §4.1.
func ParseExpression(src string) (block.Block, error) {
	p := &parser{toks: lex(src), src: src}
	b, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tokEOF {
		return nil, scherr.Parse(src, "unexpected trailing input at position "+strconv.Itoa(p.cur().pos))
	}
	return b, nil
}

type parser struct {
	toks []token
	pos  int
	src  string
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) errf(format string, args ...any) error {
	return scherr.Parse(p.src, fmt.Sprintf(format, args...))
}

// --- Or / And / Not / Unary --------------------------------------------

func (p *parser) parseExpr() (block.Block, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (block.Block, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []block.Block{first}
	for p.isOrOp() {
		p.advance()
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return block.NewOrBlock(children), nil
}

func (p *parser) isOrOp() bool {
	t := p.cur()
	return t.kind == tokComma || (t.kind == tokWord && t.text == "OR")
}

func (p *parser) parseAnd() (block.Block, error) {
	first, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	children := []block.Block{first}
	for p.isAndOp() {
		p.advance()
		next, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return block.NewAndBlock(children), nil
}

func (p *parser) isAndOp() bool {
	t := p.cur()
	return t.kind == tokDot || (t.kind == tokWord && t.text == "AND")
}

// parseNot and parsePrefixed together implement Not/Unary. Both NOT and
// the merge prefixes # / ~ can appear in either order in front of an
// atom; per spec §4.1, a merge prefix attaches to its operand, or, if
// that operand is itself a NOT, to the NOT's inner operand instead of
// the NOT node.
func (p *parser) parseNot() (block.Block, error) {
	return p.parsePrefixed()
}

func (p *parser) parsePrefixed() (block.Block, error) {
	t := p.cur()
	switch {
	case t.kind == tokHash || t.kind == tokTilde:
		p.advance()
		state := block.ExplicitOff
		if t.kind == tokTilde {
			state = block.ExplicitOn
		}
		inner, err := p.parsePrefixed()
		if err != nil {
			return nil, err
		}
		if nb, ok := inner.(*block.NotBlock); ok {
			if nb.Child != nil {
				nb.Child.SetMergeState(state)
			}
			return nb, nil
		}
		inner.SetMergeState(state)
		return inner, nil
	case t.kind == tokBang || (t.kind == tokWord && t.text == "NOT"):
		p.advance()
		child, err := p.parsePrefixed()
		if err != nil {
			return nil, err
		}
		return block.NewNotBlock(child), nil
	default:
		return p.parseAtom()
	}
}

func (p *parser) parseAtom() (block.Block, error) {
	t := p.cur()
	if t.kind == tokLParen {
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.cur().kind != tokRParen {
			return nil, p.errf("expected ')'")
		}
		p.advance()
		return inner, nil
	}
	if t.kind != tokWord {
		return nil, p.errf("expected a field or '('")
	}
	return p.parseField()
}

// --- Fields --------------------------------------------------------------

func (p *parser) parseField() (block.Block, error) {
	name := p.advance().text
	switch name {
	case "T":
		return p.parseTimeField()
	case "WD":
		return p.parseValListField(block.WeekDayKind)
	case "M":
		return p.parseValListField(block.MonthKind)
	case "MD":
		return p.parseValListField(block.MonthDayKind)
	case "Y":
		return p.parseValListField(block.YearKind)
	case "D":
		return p.parseDateField()
	case "DT":
		return p.parseDateTimeField()
	case "REF":
		return p.parseReference()
	default:
		return nil, p.errf("unknown field %q", name)
	}
}

func (p *parser) expect(kind tokenKind, what string) error {
	if p.cur().kind != kind {
		return p.errf("expected %s", what)
	}
	p.advance()
	return nil
}

func (p *parser) parseValListField(kind block.FieldKind) (block.Block, error) {
	if err := p.expect(tokLBracket, "'['"); err != nil {
		return nil, err
	}
	var constraints []interval.NumericConstraint
	for {
		c, err := p.parseValListElement()
		if err != nil {
			return nil, err
		}
		constraints = append(constraints, c)
		if p.cur().kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	if err := p.expect(tokRBracket, "']'"); err != nil {
		return nil, err
	}

	var (
		f   *block.NumericField
		err error
	)
	switch kind {
	case block.WeekDayKind:
		f, err = block.NewWeekDayField(constraints)
	case block.MonthKind:
		f, err = block.NewMonthField(constraints)
	case block.MonthDayKind:
		f, err = block.NewMonthDayField(constraints)
	case block.YearKind:
		f, err = block.NewYearField(constraints)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (p *parser) parseValListElement() (interval.NumericConstraint, error) {
	neg := false
	if p.cur().kind == tokMinus {
		p.advance()
		neg = true
	}
	t := p.cur()
	if t.kind != tokWord {
		return interval.NumericConstraint{}, p.errf("expected a number")
	}

	if !neg && strings.HasSuffix(t.text, "n") && len(t.text) > 1 && isAllDigits(t.text[:len(t.text)-1]) {
		a, _ := strconv.ParseInt(t.text[:len(t.text)-1], 10, 64)
		p.advance()
		var op interval.AlgebraicOp
		switch p.cur().kind {
		case tokPlus:
			op = interval.Plus
		case tokMinus:
			op = interval.Minus
		default:
			return interval.NumericConstraint{}, p.errf("expected '+' or '-' in algebraic value")
		}
		p.advance()
		bTok := p.cur()
		if bTok.kind != tokWord || !isAllDigits(bTok.text) {
			return interval.NumericConstraint{}, p.errf("expected a number after algebraic operator")
		}
		b, _ := strconv.ParseInt(bTok.text, 10, 64)
		p.advance()
		return interval.NewAlgebraic(a, op, b), nil
	}

	if !isAllDigits(t.text) {
		return interval.NumericConstraint{}, p.errf("expected a number")
	}
	val, _ := strconv.ParseInt(t.text, 10, 64)
	if neg {
		val = -val
	}
	p.advance()

	if p.cur().kind == tokDotDot {
		p.advance()
		endNeg := false
		if p.cur().kind == tokMinus {
			p.advance()
			endNeg = true
		}
		endTok := p.cur()
		if endTok.kind != tokWord || !isAllDigits(endTok.text) {
			return interval.NumericConstraint{}, p.errf("expected a number after '..'")
		}
		end, _ := strconv.ParseInt(endTok.text, 10, 64)
		if endNeg {
			end = -end
		}
		p.advance()
		return interval.NewRange(val, end), nil
	}
	return interval.NewSingle(val), nil
}

// --- Time ------------------------------------------------------------------

func (p *parser) parseTimeField() (block.Block, error) {
	if err := p.expect(tokLBracket, "'['"); err != nil {
		return nil, err
	}
	var ranges []interval.Interval
	for {
		r, err := p.parseTimeRange()
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
		if p.cur().kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	if err := p.expect(tokRBracket, "']'"); err != nil {
		return nil, err
	}
	return block.NewTimeField(ranges)
}

func (p *parser) parseTimeRange() (interval.Interval, error) {
	start, err := p.parseTimeLiteral()
	if err != nil {
		return interval.Interval{}, err
	}
	if err := p.expect(tokDotDot, "'..'"); err != nil {
		return interval.Interval{}, err
	}
	end, err := p.parseTimeLiteral()
	if err != nil {
		return interval.Interval{}, err
	}
	return interval.Interval{Start: start, End: end}, nil
}

// parseTimeLiteral parses H | H:M | H:M:S | H:M:S.mmm, with an optional
// trailing '>' that pads unspecified lower components to their maxima.
func (p *parser) parseTimeLiteral() (int64, error) {
	h, err := p.parseSmallNumber("hour")
	if err != nil {
		return 0, err
	}
	m, s, ms := int64(0), int64(0), int64(0)
	precision := 1
	if p.cur().kind == tokColon {
		p.advance()
		m, err = p.parseSmallNumber("minute")
		if err != nil {
			return 0, err
		}
		precision = 2
		if p.cur().kind == tokColon {
			p.advance()
			s, err = p.parseSmallNumber("second")
			if err != nil {
				return 0, err
			}
			precision = 3
			if p.cur().kind == tokDot {
				p.advance()
				ms, err = p.parseSmallNumber("millisecond")
				if err != nil {
					return 0, err
				}
				precision = 4
			}
		}
	}

	padded := false
	if p.cur().kind == tokGt {
		p.advance()
		padded = true
	}

	if padded {
		switch precision {
		case 1:
			m, s, ms = 59, 59, 999
		case 2:
			s, ms = 59, 999
		case 3:
			ms = 999
		}
	}

	return h*3_600_000 + m*60_000 + s*1_000 + ms, nil
}

func (p *parser) parseSmallNumber(what string) (int64, error) {
	t := p.cur()
	if t.kind != tokWord || !isAllDigits(t.text) {
		return 0, p.errf("expected %s digits", what)
	}
	p.advance()
	v, _ := strconv.ParseInt(t.text, 10, 64)
	return v, nil
}

// --- Date / DateTime -------------------------------------------------------

func (p *parser) parseDateField() (block.Block, error) {
	if err := p.expect(tokLBracket, "'['"); err != nil {
		return nil, err
	}
	var ranges []interval.Interval
	for {
		y1, mo1, d1, err := p.parseDateLiteral()
		if err != nil {
			return nil, err
		}
		startMs := civilMidnight(y1, mo1, d1)
		endMs := startMs + msPerDay - 1
		if p.cur().kind == tokDotDot {
			p.advance()
			y2, mo2, d2, err := p.parseDateLiteral()
			if err != nil {
				return nil, err
			}
			endMs = civilMidnight(y2, mo2, d2) + msPerDay - 1
		}
		ranges = append(ranges, interval.Interval{Start: startMs, End: endMs})
		if p.cur().kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	if err := p.expect(tokRBracket, "']'"); err != nil {
		return nil, err
	}
	return block.NewDateField(ranges)
}

// parseDateLiteral parses YYYY-MM-DD, with an optional leading '-' for
// years before 0 (spec supports years down to -9999).
func (p *parser) parseDateLiteral() (year, month, day int, err error) {
	neg := false
	if p.cur().kind == tokMinus {
		p.advance()
		neg = true
	}
	yTok := p.cur()
	if yTok.kind != tokWord || !isAllDigits(yTok.text) {
		return 0, 0, 0, p.errf("expected a 4-digit year")
	}
	p.advance()
	y, _ := strconv.Atoi(yTok.text)
	if neg {
		y = -y
	}

	if err := p.expect(tokMinus, "'-'"); err != nil {
		return 0, 0, 0, err
	}
	moTok := p.cur()
	if moTok.kind != tokWord || !isAllDigits(moTok.text) {
		return 0, 0, 0, p.errf("expected a 2-digit month")
	}
	p.advance()
	mo, _ := strconv.Atoi(moTok.text)

	if err := p.expect(tokMinus, "'-'"); err != nil {
		return 0, 0, 0, err
	}
	dTok := p.cur()
	if dTok.kind != tokWord || dTok.text == "" || !unicode.IsDigit([]rune(dTok.text)[0]) {
		return 0, 0, 0, p.errf("expected a 2-digit day")
	}
	digits, rest := splitLeadingDigits(dTok.text)
	d, _ := strconv.Atoi(digits)
	if rest == "" {
		p.advance()
	} else {
		// A DateTime literal's 'T' separator lexes glued onto the day
		// digits (e.g. "01T09"), since the lexer merges adjacent
		// letter/digit runs into one word. Consume just the day and
		// leave the remainder in place as the next token.
		p.toks[p.pos] = token{kind: tokWord, text: rest, pos: dTok.pos + len(digits)}
	}

	return y, mo, d, nil
}

// splitLeadingDigits splits s into its leading run of ASCII digits and
// whatever follows.
func splitLeadingDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}

func (p *parser) parseDateTimeField() (block.Block, error) {
	if err := p.expect(tokLBracket, "'['"); err != nil {
		return nil, err
	}
	var ranges []interval.Interval
	for {
		start, err := p.parseDateTimeLiteral()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokDotDot, "'..'"); err != nil {
			return nil, err
		}
		end, err := p.parseDateTimeLiteral()
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, interval.Interval{Start: start, End: end})
		if p.cur().kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	if err := p.expect(tokRBracket, "']'"); err != nil {
		return nil, err
	}
	return block.NewDateTimeField(ranges)
}

func (p *parser) parseDateTimeLiteral() (int64, error) {
	y, mo, d, err := p.parseDateLiteral()
	if err != nil {
		return 0, err
	}
	base := civilMidnight(y, mo, d)

	if p.splitDateTimeSeparator() {
		tod, err := p.parseTimeLiteral()
		if err != nil {
			return 0, err
		}
		return base + tod, nil
	}
	return base, nil
}

// splitDateTimeSeparator detects the 'T' date/time separator of a
// DateTime literal. Because the lexer merges adjacent letter/digit runs
// into a single word, "2024-01-01T09:00" lexes its time-of-day portion
// as one token "T09" rather than two; this splits that token in place
// so parseTimeLiteral can consume the digits next.
func (p *parser) splitDateTimeSeparator() bool {
	t := p.cur()
	if t.kind != tokWord || !strings.HasPrefix(t.text, "T") {
		return false
	}
	if t.text == "T" {
		p.advance()
		return true
	}
	rest := t.text[1:]
	if !isAllDigits(rest) {
		return false
	}
	p.toks[p.pos] = token{kind: tokWord, text: rest, pos: t.pos + 1}
	return true
}

func (p *parser) parseReference() (block.Block, error) {
	if err := p.expect(tokLBracket, "'['"); err != nil {
		return nil, err
	}
	t := p.cur()
	if t.kind != tokWord {
		return nil, p.errf("expected a reference ID")
	}
	id := t.text
	p.advance()
	if err := p.expect(tokRBracket, "']'"); err != nil {
		return nil, err
	}
	return block.NewReference(id)
}

const msPerDay = 86_400_000

func civilMidnight(year, month, day int) int64 {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).UnixMilli()
}
