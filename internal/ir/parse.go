package ir

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseError reports a malformed term in the text syntax.
type ParseError struct {
	Input   string
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q at %d: %s", e.Input, e.Offset, e.Message)
}

// ParseTerm parses the term text syntax:
//
//	τ_0_0.[P:T].[P]
//	[Collection].[Collection:Element].[concrete: Array<σ0> with <τ_0_0.[P:U]>]
//
// Symbols are separated by dots outside brackets.
func (c *Context) ParseTerm(input string) (MutableTerm, error) {
	parts, err := splitTopLevel(input, '.')
	if err != nil {
		return nil, &ParseError{Input: input, Message: err.Error()}
	}
	term := make(MutableTerm, 0, len(parts))
	offset := 0
	for _, part := range parts {
		sym, err := c.ParseSymbol(strings.TrimSpace(part))
		if err != nil {
			var pe *ParseError
			if asParseError(err, &pe) {
				pe.Input = input
				pe.Offset += offset
				return nil, pe
			}
			return nil, err
		}
		term = append(term, sym)
		offset += len(part) + 1
	}
	return term, nil
}

// MustParseTerm is like ParseTerm but panics on error.
// Use only in tests or with inputs known to be valid.
func (c *Context) MustParseTerm(input string) MutableTerm {
	t, err := c.ParseTerm(input)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseSymbol parses a single symbol.
func (c *Context) ParseSymbol(input string) (Symbol, error) {
	if input == "" {
		return Symbol{}, &ParseError{Input: input, Message: "empty symbol"}
	}

	if strings.HasPrefix(input, "τ_") {
		fields := strings.Split(strings.TrimPrefix(input, "τ_"), "_")
		if len(fields) != 2 {
			return Symbol{}, &ParseError{Input: input, Message: "generic parameter must be τ_depth_index"}
		}
		depth, err1 := strconv.Atoi(fields[0])
		index, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil || depth < 0 || index < 0 {
			return Symbol{}, &ParseError{Input: input, Message: "generic parameter must be τ_depth_index"}
		}
		return c.GenericParamSymbol(depth, index), nil
	}

	if input[0] != '[' {
		if !isIdentifier(input) {
			return Symbol{}, &ParseError{Input: input, Message: "invalid name"}
		}
		return c.NameSymbol(input), nil
	}

	if input[len(input)-1] != ']' {
		return Symbol{}, &ParseError{Input: input, Offset: len(input) - 1, Message: "missing ]"}
	}
	body := input[1 : len(input)-1]

	for _, kw := range []string{"layout:", "superclass:", "concrete:"} {
		if !strings.HasPrefix(body, kw) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(body, kw))
		if rest == "" {
			return Symbol{}, &ParseError{Input: input, Message: kw + " requires a value"}
		}
		if kw == "layout:" {
			return c.LayoutSymbol(rest), nil
		}
		pattern, subs, err := c.parseSubstitutions(rest)
		if err != nil {
			return Symbol{}, &ParseError{Input: input, Message: err.Error()}
		}
		if kw == "superclass:" {
			return c.SuperclassSymbol(pattern, subs), nil
		}
		return c.ConcreteTypeSymbol(pattern, subs), nil
	}

	if colon := strings.LastIndexByte(body, ':'); colon >= 0 {
		name := strings.TrimSpace(body[colon+1:])
		protos := strings.Split(body[:colon], "&")
		for i, p := range protos {
			protos[i] = strings.TrimSpace(p)
			if !isIdentifier(protos[i]) {
				return Symbol{}, &ParseError{Input: input, Message: fmt.Sprintf("invalid protocol %q", protos[i])}
			}
		}
		if !isIdentifier(name) {
			return Symbol{}, &ParseError{Input: input, Message: fmt.Sprintf("invalid associated type %q", name)}
		}
		return c.AssociatedTypeSymbol(protos, name), nil
	}

	if !isIdentifier(body) {
		return Symbol{}, &ParseError{Input: input, Message: fmt.Sprintf("invalid protocol %q", body)}
	}
	return c.ProtocolSymbol(body), nil
}

// parseSubstitutions splits "Pattern<σ0> with <t0, t1>" into the pattern and
// the parsed substitution terms.
func (c *Context) parseSubstitutions(s string) (string, []Term, error) {
	idx := indexTopLevel(s, " with <")
	if idx < 0 {
		return s, nil, nil
	}
	pattern := strings.TrimSpace(s[:idx])
	list := s[idx+len(" with <"):]
	if !strings.HasSuffix(list, ">") {
		return "", nil, fmt.Errorf("substitution list must end with >")
	}
	list = list[:len(list)-1]
	items, err := splitTopLevel(list, ',')
	if err != nil {
		return "", nil, err
	}
	subs := make([]Term, 0, len(items))
	for _, item := range items {
		t, err := c.ParseTerm(strings.TrimSpace(item))
		if err != nil {
			return "", nil, err
		}
		subs = append(subs, c.Term(t))
	}
	return pattern, subs, nil
}

// splitTopLevel splits s at sep where sep is not nested in [] or <>.
func splitTopLevel(s string, sep byte) ([]string, error) {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '<':
			depth++
		case ']', '>':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced %q at %d", s[i], i)
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets")
	}
	return append(parts, s[start:]), nil
}

// indexTopLevel finds sub in s outside [] and <>.
func indexTopLevel(s, sub string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		if depth == 0 && strings.HasPrefix(s[i:], sub) {
			return i
		}
		switch s[i] {
		case '[', '<':
			depth++
		case ']', '>':
			depth--
		}
	}
	return -1
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func asParseError(err error, target **ParseError) bool {
	pe, ok := err.(*ParseError)
	if ok {
		*target = pe
	}
	return ok
}
