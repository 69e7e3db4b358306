package cin

import "sort"

// Space is the symbol (and keystroke token) that always terminates a
// composition, whether or not the table declares it.
const Space = " "

// Table is a loaded CIN input method table. It is never modified after Parse
// returns and may be shared between goroutines.
type Table struct {
	name    string
	hasName bool
	endkey  string
	codec   *Codec
	index   *index
	term    map[string]struct{}

	termInKey bool
}

// TableStats summarises a table.
type TableStats struct {
	Name        string
	Tokens      int
	Keys        int
	Chars       int
	Entries     int
	EndKeys     string
	Terminators []string
}

// Name returns the %cname of the table, if it declared one.
func (t *Table) Name() (string, bool) {
	return t.name, t.hasName
}

// Codec returns the table's keyname codec.
func (t *Table) Codec() *Codec {
	return t.codec
}

// Lookup returns the characters for a key sequence, in declaration order.
// When usingSymbols is set the query is a symbol string and is decoded first;
// an undeclared symbol yields an *UnknownTokenError. A key with no entries
// yields nil and no error.
func (t *Table) Lookup(query string, usingSymbols bool) ([]string, error) {
	key := query
	if usingSymbols {
		var err error
		if key, err = t.codec.Decode(query); err != nil {
			return nil, err
		}
	}
	return t.index.chars.get(key), nil
}

// LookupSymbols is Lookup for a symbol sequence that is already split, as a
// composition buffer is.
func (t *Table) LookupSymbols(symbols []string) ([]string, error) {
	key, err := t.codec.DecodeSymbols(symbols)
	if err != nil {
		return nil, err
	}
	return t.index.chars.get(key), nil
}

// ReverseLookup returns every key sequence that produces char, in declaration
// order, encoded to symbols when usingSymbols is set. An unknown character
// yields nil and no error.
func (t *Table) ReverseLookup(char string, usingSymbols bool) ([]string, error) {
	keys := t.index.keys.get(char)
	if keys == nil || !usingSymbols {
		return keys, nil
	}
	for i, k := range keys {
		s, err := t.codec.Encode(k)
		if err != nil {
			return nil, err
		}
		keys[i] = s
	}
	return keys, nil
}

// Terminators returns the terminator symbols, sorted.
func (t *Table) Terminators() []string {
	out := make([]string, 0, len(t.term))
	for s := range t.term {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// IsTerminator reports whether symbol ends a composition.
func (t *Table) IsTerminator(symbol string) bool {
	_, ok := t.term[symbol]
	return ok
}

// TerminatorInKey reports whether a declared terminator is committed as part
// of the key.
func (t *Table) TerminatorInKey() bool {
	return t.termInKey
}

// TerminatorKeys returns the raw %endkey value, or Space if there was none.
func (t *Table) TerminatorKeys() string {
	return t.endkey
}

// Keys returns every key sequence that has at least one entry, sorted.
func (t *Table) Keys() []string {
	return t.index.sortedKeys()
}

// Len returns the number of chardef entries.
func (t *Table) Len() int {
	return t.index.entries
}

func (t *Table) Stats() TableStats {
	return TableStats{
		Name:        t.name,
		Tokens:      t.codec.Len(),
		Keys:        len(t.index.chars),
		Chars:       len(t.index.keys),
		Entries:     t.index.entries,
		EndKeys:     t.endkey,
		Terminators: t.Terminators(),
	}
}

func (t *Table) buildTerminators() {
	t.term = map[string]struct{}{Space: {}}
	for _, r := range t.endkey {
		if s, ok := t.codec.Symbol(string(r)); ok {
			t.term[s] = struct{}{}
		}
	}
}
