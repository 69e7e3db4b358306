package cin

import (
	"strings"
	"unicode/utf8"
)

// Codec maps keystroke tokens to display symbols and back.
//
// Declarations are last-wins: redeclaring a token replaces its symbol and
// redeclaring a symbol replaces its token. Stale entries from the earlier
// declaration are kept, as the CIN format has always behaved.
type Codec struct {
	toSymbol map[string]string
	toToken  map[string]string
	order    []string // tokens in first-declaration order
	maxRunes int      // longest symbol, for longest-match decoding
}

func newCodec() *Codec {
	return &Codec{
		toSymbol: make(map[string]string),
		toToken:  make(map[string]string),
	}
}

func (c *Codec) set(token, symbol string) {
	if _, ok := c.toSymbol[token]; !ok {
		c.order = append(c.order, token)
	}
	c.toSymbol[token] = symbol
	c.toToken[symbol] = token
	if n := utf8.RuneCountInString(symbol); n > c.maxRunes {
		c.maxRunes = n
	}
}

func (c *Codec) declared(token, symbol string) (tokenSeen, symbolSeen bool) {
	_, tokenSeen = c.toSymbol[token]
	_, symbolSeen = c.toToken[symbol]
	return tokenSeen, symbolSeen
}

// Symbol returns the display symbol for a single keystroke token.
func (c *Codec) Symbol(token string) (string, bool) {
	s, ok := c.toSymbol[token]
	return s, ok
}

// Token returns the keystroke token for a single display symbol.
func (c *Codec) Token(symbol string) (string, bool) {
	t, ok := c.toToken[symbol]
	return t, ok
}

// Len returns the number of declared tokens.
func (c *Codec) Len() int {
	return len(c.toSymbol)
}

// Tokens returns the declared tokens in declaration order.
func (c *Codec) Tokens() []string {
	return append([]string(nil), c.order...)
}

// Encode translates a key sequence, one token per rune, into symbols.
func (c *Codec) Encode(keys string) (string, error) {
	symbols, err := c.EncodeTokens(strings.Split(keys, ""))
	if err != nil {
		return "", err
	}
	return strings.Join(symbols, ""), nil
}

// EncodeTokens is Encode over an already split token sequence.
func (c *Codec) EncodeTokens(tokens []string) ([]string, error) {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		s, ok := c.toSymbol[t]
		if !ok {
			return nil, unknownToken(t, false)
		}
		out = append(out, s)
	}
	return out, nil
}

// Decode translates a symbol string back into a key sequence. Symbols longer
// than one rune are matched greedily, longest first.
func (c *Codec) Decode(symbols string) (string, error) {
	var sb strings.Builder
	rest := symbols
	for rest != "" {
		token, n := c.match(rest)
		if n == 0 {
			r, _ := utf8.DecodeRuneInString(rest)
			return "", unknownToken(string(r), true)
		}
		sb.WriteString(token)
		rest = rest[n:]
	}
	return sb.String(), nil
}

// DecodeSymbols is Decode over an already split symbol sequence.
func (c *Codec) DecodeSymbols(symbols []string) (string, error) {
	var sb strings.Builder
	for _, s := range symbols {
		t, ok := c.toToken[s]
		if !ok {
			return "", unknownToken(s, true)
		}
		sb.WriteString(t)
	}
	return sb.String(), nil
}

// match finds the longest declared symbol prefixing s and returns its token
// and byte length.
func (c *Codec) match(s string) (string, int) {
	// Byte offsets of each rune boundary up to maxRunes.
	ends := make([]int, 0, c.maxRunes)
	for i := range s {
		if i > 0 {
			ends = append(ends, i)
		}
		if len(ends) == c.maxRunes {
			break
		}
	}
	if len(ends) < c.maxRunes {
		ends = append(ends, len(s))
	}
	for i := len(ends) - 1; i >= 0; i-- {
		if t, ok := c.toToken[s[:ends[i]]]; ok {
			return t, ends[i]
		}
	}
	return "", 0
}

// Pairs returns token/symbol pairs in declaration order.
func (c *Codec) Pairs() [][2]string {
	pairs := make([][2]string, 0, len(c.order))
	for _, t := range c.order {
		pairs = append(pairs, [2]string{t, c.toSymbol[t]})
	}
	return pairs
}
