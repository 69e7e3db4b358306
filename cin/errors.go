package cin

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Reasons a table fails to parse. A *FormatError wraps exactly one of these,
// so callers can match with errors.Is.
var (
	ErrTruncated   = errors.New("unexpected end of file")
	ErrFieldCount  = errors.New("expected exactly two fields")
	ErrOutOfOrder  = errors.New("section out of order")
	ErrDuplicate   = errors.New("duplicate keyname declaration")
	ErrMissingName = errors.New("%cname without a name")
)

// FormatError reports a structural problem in a table file.
// Line is 1-based; it is the last line read when the file ended early.
type FormatError struct {
	Line   int
	Text   string
	Reason error
}

func (e *FormatError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Reason, e.Text)
}

func (e *FormatError) Unwrap() error { return e.Reason }

// UnknownTokenError reports a keystroke token or display symbol that the
// keyname section never declared.
type UnknownTokenError struct {
	Token  string
	Symbol bool // true when Token is a display symbol
}

func (e *UnknownTokenError) Error() string {
	if e.Symbol {
		return fmt.Sprintf("unknown symbol %q", e.Token)
	}
	return fmt.Sprintf("unknown key %q", e.Token)
}

func formatError(line int, text string, reason error) error {
	return errors.WithStack(&FormatError{Line: line, Text: text, Reason: reason})
}

func unknownToken(token string, symbol bool) error {
	return errors.WithStack(&UnknownTokenError{Token: token, Symbol: symbol})
}

// IsFormatError reports whether err is, or wraps, a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsUnknownToken reports whether err is, or wraps, an *UnknownTokenError.
func IsUnknownToken(err error) bool {
	var ue *UnknownTokenError
	return errors.As(err, &ue)
}
