package cin

import (
	"strings"
	"unicode"
)

// Separators used when rendering an Annotation.
const (
	AnnotationSep = "："
	EncodingSep   = "／"
	NoEncoding    = "？"
)

// Annotation is a character together with its encodings in the reference
// table.
type Annotation struct {
	Char      string
	Encodings []string // nil when the reference table does not know Char
}

func (a Annotation) String() string {
	if len(a.Encodings) == 0 {
		return a.Char + AnnotationSep + NoEncoding
	}
	return a.Char + AnnotationSep + strings.Join(a.Encodings, EncodingSep)
}

// Step is the outcome of feeding one symbol to a Coordinator.
type Step struct {
	Buffer    []string     // buffer after the step; unchanged by a commit
	Committed bool         // the symbol was a terminator
	Results   []Annotation // candidates in ranking order, when Committed
}

// Coordinator composes characters with one table and annotates them with
// another. It keeps no composition state of its own: the caller owns the
// symbol buffer and passes it to every call.
type Coordinator struct {
	compose   *Table
	reference *Table
}

// NewCoordinator pairs a composition table with a reference table. They may
// be the same table.
func NewCoordinator(compose, reference *Table) *Coordinator {
	return &Coordinator{compose: compose, reference: reference}
}

// Compose returns the composition table.
func (c *Coordinator) Compose() *Table { return c.compose }

// Reference returns the reference table.
func (c *Coordinator) Reference() *Table { return c.reference }

// OnSymbol appends symbol to buf, or commits buf when symbol is one of the
// composition table's terminators. The terminator itself is not part of the
// key unless the table was loaded WithTerminatorInKey and declares it. A
// committed key with no entries yields no results and no error, as does a
// commit on an empty buffer.
func (c *Coordinator) OnSymbol(buf []string, symbol string) (Step, error) {
	if !c.compose.IsTerminator(symbol) {
		return Step{Buffer: appendSymbol(buf, symbol)}, nil
	}

	step := Step{Buffer: buf, Committed: true}
	if len(buf) == 0 {
		return step, nil
	}
	key := buf
	if c.compose.TerminatorInKey() {
		if _, ok := c.compose.Codec().Token(symbol); ok {
			key = appendSymbol(buf, symbol)
		}
	}
	chars, err := c.compose.LookupSymbols(key)
	if err != nil {
		return step, err
	}
	for _, ch := range chars {
		a, err := c.annotate(ch)
		if err != nil {
			return step, err
		}
		step.Results = append(step.Results, a)
	}
	return step, nil
}

func appendSymbol(buf []string, symbol string) []string {
	next := make([]string, len(buf), len(buf)+1)
	copy(next, buf)
	return append(next, symbol)
}

// OnErase drops the last symbol of buf.
func (c *Coordinator) OnErase(buf []string) []string {
	if len(buf) == 0 {
		return buf
	}
	return append([]string(nil), buf[:len(buf)-1]...)
}

// Annotate reverse-looks-up every character of text in the reference table.
// Whitespace is skipped.
func (c *Coordinator) Annotate(text string) ([]Annotation, error) {
	var out []Annotation
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		a, err := c.annotate(string(r))
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (c *Coordinator) annotate(char string) (Annotation, error) {
	enc, err := c.reference.ReverseLookup(char, true)
	if err != nil {
		return Annotation{}, err
	}
	return Annotation{Char: char, Encodings: enc}, nil
}
