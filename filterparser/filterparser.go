/*
Package filterparser compiles search filter strings like

	artist:radiohead length:>3:00 -genre:"heavy metal"

into decision trees that judge one record at a time.

The grammar:

	expr        = or-group
	or-group    = and-group ("OR" and-group)*
	and-group   = search-expr (["AND"] search-expr)*
	search-expr = "(" or-group ")" | "-" search-expr | search-term
	search-term = [column ":"] [prefix] text
	prefix      = "=" | "!=" | "<>" | "<" | "<=" | ">" | ">="
	text        = '"' anything '"' | run of characters excluding space ( ) -

Adjacent terms imply AND. The language has no syntax errors: an empty group
matches everything, a missing ')' is tolerated, and anything unrecognizable is
taken as literal search text. AND and OR are keywords only when upper case and
followed by a delimiter, so ANDROID is a search term.
*/
package filterparser

import (
	"strconv"
	"strings"
	"unicode"
)

// Parse compiles a filter string against the given schema. It always returns
// a usable tree; malformed input degrades to broader matches instead of
// failing.
func Parse(schema *Schema, filter string) Tree {
	p := &parser{schema: schema, input: []rune(filter)}
	return p.parseOrGroup()
}

// parser scans the filter string with an index cursor and a scratch buffer.
// Keyword probes consume runes into buf; after a partial match they stay
// there and the next search term picks them up as ordinary text.
type parser struct {
	schema *Schema
	input  []rune
	pos    int
	buf    []rune
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) peek() rune {
	return p.input[p.pos]
}

// advance skips whitespace.
func (p *parser) advance() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.pos++
	}
}

// checkAnd steps over a literal AND keyword if one starts at the cursor.
// ANDROID is not a keyword: the probe leaves "AND" in buf and the following
// term continues from there.
func (p *parser) checkAnd() bool {
	if !p.eof() && p.peek() == 'A' {
		p.buf = append(p.buf, 'A')
		p.pos++
		if !p.eof() && p.peek() == 'N' {
			p.buf = append(p.buf, 'N')
			p.pos++
			if !p.eof() && p.peek() == 'D' {
				p.buf = append(p.buf, 'D')
				p.pos++
				if p.eof() || unicode.IsSpace(p.peek()) || p.peek() == '-' || p.peek() == '(' {
					p.advance()
					p.buf = p.buf[:0]
					return true
				}
			}
		}
	}
	return false
}

// checkOr recognizes a literal OR keyword either at the cursor or already
// sitting whole in buf from an earlier peek. With stepOver false the keyword
// is left in buf for the or-group to consume.
func (p *parser) checkOr(stepOver bool) bool {
	if len(p.buf) > 0 {
		if string(p.buf) == "OR" {
			if stepOver {
				p.buf = p.buf[:0]
				p.advance()
			}
			return true
		}
		return false
	}
	if !p.eof() && p.peek() == 'O' {
		p.buf = append(p.buf, 'O')
		p.pos++
		if !p.eof() && p.peek() == 'R' {
			p.buf = append(p.buf, 'R')
			p.pos++
			if p.eof() || unicode.IsSpace(p.peek()) || p.peek() == '-' || p.peek() == '(' {
				if stepOver {
					p.buf = p.buf[:0]
					p.advance()
				}
				return true
			}
		}
	}
	return false
}

func (p *parser) parseOrGroup() Tree {
	p.advance()
	if p.eof() {
		return nopFilter{}
	}
	group := &orFilter{}
	group.add(p.parseAndGroup())
	p.advance()
	for p.checkOr(true) {
		group.add(p.parseAndGroup())
		p.advance()
	}
	return group
}

func (p *parser) parseAndGroup() Tree {
	p.advance()
	if p.eof() {
		return nopFilter{}
	}
	group := &andFilter{}
	for {
		group.add(p.parseSearchExpression())
		p.advance()
		if !p.eof() && p.peek() == ')' {
			break
		}
		if p.checkOr(false) {
			break
		}
		// With no explicit AND the next term is appended anyway.
		p.checkAnd()
		if p.eof() {
			break
		}
	}
	return group
}

func (p *parser) parseSearchExpression() Tree {
	p.advance()
	if p.eof() {
		return nopFilter{}
	}
	switch p.peek() {
	case '(':
		p.pos++
		p.advance()
		group := p.parseOrGroup()
		p.advance()
		if !p.eof() && p.peek() == ')' {
			p.pos++
		}
		return group
	case '-':
		p.pos++
		expr := p.parseSearchExpression()
		// Negating nothing stays nothing.
		if expr.Type() != FilterNop {
			return &notFilter{child: expr}
		}
		return expr
	default:
		return p.parseSearchTerm()
	}
}

func (p *parser) parseSearchTerm() Tree {
	var column, prefix string
	inQuotes := false

loop:
	for !p.eof() {
		c := p.peek()
		switch {
		case inQuotes:
			if c == '"' {
				inQuotes = false
			} else {
				p.buf = append(p.buf, c)
			}
		case c == '"':
			inQuotes = true
		case column == "" && c == ':':
			column = strings.ToLower(string(p.buf))
			p.buf = p.buf[:0]
			// A prefix before the column name is discarded.
			prefix = ""
		case unicode.IsSpace(c) || c == '(' || c == ')' || c == '-':
			break loop
		case len(p.buf) == 0:
			// The term may still turn out to have a column part; read a
			// relational prefix on the assumption it does not.
			if prefix == "" && (c == '>' || c == '<' || c == '=' || c == '!') {
				prefix += string(c)
			} else if prefix != "" && prefix != "=" && (c == '=' || c == '>') {
				prefix += string(c)
			} else {
				p.buf = append(p.buf, c)
			}
		default:
			p.buf = append(p.buf, c)
		}
		p.pos++
	}

	search := strings.ToLower(string(p.buf))
	p.buf = p.buf[:0]

	return p.newSearchTermNode(column, prefix, search)
}

// newSearchTermNode resolves one parsed term into a tree leaf. The branches
// form a priority table; their order matters.
func (p *parser) newSearchTermNode(column, prefix, search string) Tree {
	// An empty search value filters nothing, except explicit equality to
	// empty which is allowed through.
	if search == "" && prefix != "=" {
		return nopFilter{}
	}

	field, known := p.schema.Lookup(column)

	var cmp Comparator
	switch {
	case known && field.Kind == KindRating:
		rating := ParseSearchRating(search)
		switch prefix {
		case "!=", "<>":
			cmp = floatNeComparator(rating)
		case ">":
			cmp = floatGtComparator(rating)
		case ">=":
			cmp = floatGeComparator(rating)
		case "<":
			cmp = floatLtComparator(rating)
		case "<=":
			cmp = floatLeComparator(rating)
		default:
			cmp = floatEqComparator(rating)
		}

	case prefix == "!=" || prefix == "<>":
		cmp = neComparator(search)

	case known && (field.Kind == KindInt || field.Kind == KindDuration):
		var value int
		if field.Kind == KindDuration {
			value = ParseSearchTime(search)
		} else {
			value = toInt(search)
		}
		switch prefix {
		case ">":
			cmp = intGtComparator(value)
		case ">=":
			cmp = intGeComparator(value)
		case "<":
			cmp = intLtComparator(value)
		case "<=":
			cmp = intLeComparator(value)
		default:
			// Equality goes through the round-tripped number as text so
			// that "3:00" and "180" land on the same canonical form.
			cmp = eqComparator(strconv.Itoa(value))
		}

	default:
		switch prefix {
		case "=":
			cmp = eqComparator(search)
		case ">":
			cmp = lexicalGtComparator(search)
		case ">=":
			cmp = lexicalGeComparator(search)
		case "<":
			cmp = lexicalLtComparator(search)
		case "<=":
			cmp = lexicalLeComparator(search)
		default:
			cmp = defaultComparator(search)
		}
	}

	if known {
		if field.Kind == KindDuration {
			cmp = dropTailComparator(cmp)
		}
		return &columnFilter{column: field.Name, cmp: cmp}
	}
	return &termFilter{columns: p.schema.fieldNames(), cmp: cmp}
}
