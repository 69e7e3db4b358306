package cin

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const (
	dirCName        = "%cname"
	dirEndKey       = "%endkey"
	dirKeynameBegin = "%keyname begin"
	dirKeynameEnd   = "%keyname end"
	dirChardefBegin = "%chardef begin"
	dirChardefEnd   = "%chardef end"
	dirKeyname      = "%keyname"
	dirChardef      = "%chardef"

	byteOrderMark = "\ufeff"
	maxLineBytes  = 1 << 20
)

type parseState int

const (
	statePreamble  parseState = iota // before %keyname begin
	stateKeyname                     // inside keyname
	stateInterlude                   // between %keyname end and %chardef begin
	stateChardef                     // inside chardef
	stateDone                        // after %chardef end
)

func (s parseState) String() string {
	switch s {
	case statePreamble:
		return "preamble"
	case stateKeyname:
		return "keyname"
	case stateInterlude:
		return "interlude"
	case stateChardef:
		return "chardef"
	default:
		return "done"
	}
}

// Option configures Parse and Load.
type Option func(*parser)

// WithStrictKeynames rejects a keyname line that redeclares a token or a
// symbol instead of letting the last declaration win.
func WithStrictKeynames() Option {
	return func(p *parser) { p.strict = true }
}

// WithTerminatorInKey makes a terminator declared in the keyname section the
// last token of the key it commits, for tables whose chardef keys end in the
// terminator key (tone marks in phonetic tables). The implicit Space
// terminator never joins the key.
func WithTerminatorInKey() Option {
	return func(p *parser) { p.table.termInKey = true }
}

// WithLogger logs a summary of each load at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(p *parser) { p.log = l }
}

type parser struct {
	state  parseState
	line   int
	text   string
	strict bool
	source string
	log    *zap.Logger
	table  *Table
}

// Load reads and parses the table file at path.
func Load(path string, opts ...Option) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open table")
	}
	defer f.Close()

	t, err := Parse(f, append(opts[:len(opts):len(opts)], withSource(path))...)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return t, nil
}

func withSource(path string) Option {
	return func(p *parser) { p.source = path }
}

// Parse reads a whole CIN table from r. A malformed or truncated file yields
// a *FormatError and no table.
func Parse(r io.Reader, opts ...Option) (*Table, error) {
	p := &parser{
		log: zap.NewNop(),
		table: &Table{
			endkey: Space,
			codec:  newCodec(),
			index:  newIndex(),
		},
	}
	for _, opt := range opts {
		opt(p)
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		p.line++
		p.text = strings.TrimRight(sc.Text(), "\r\n")
		if p.line == 1 {
			p.text = strings.TrimPrefix(p.text, byteOrderMark)
		}
		if err := p.step(); err != nil {
			return nil, err
		}
		if p.state == stateDone {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "read line %d", p.line+1)
	}
	if p.state != stateDone {
		return nil, formatError(p.line, "", errors.Wrapf(ErrTruncated, "in %s", p.state))
	}

	st := p.table.Stats()
	p.log.Debug("table loaded",
		zap.String("source", p.source),
		zap.String("cname", st.Name),
		zap.Int("tokens", st.Tokens),
		zap.Int("entries", st.Entries),
		zap.Strings("terminators", st.Terminators))
	return p.table, nil
}

func (p *parser) step() error {
	switch p.state {
	case statePreamble:
		return p.preamble()
	case stateKeyname:
		return p.keyname()
	case stateInterlude:
		return p.interlude()
	case stateChardef:
		return p.chardef()
	}
	return nil
}

func (p *parser) preamble() error {
	switch {
	case strings.HasPrefix(p.text, dirKeynameBegin):
		p.state = stateKeyname
	case strings.HasPrefix(p.text, dirKeyname), strings.HasPrefix(p.text, dirChardef):
		return p.fail(ErrOutOfOrder)
	case isDirective(p.text, dirCName):
		if p.table.hasName {
			return nil
		}
		name := strings.TrimLeft(p.text[len(dirCName):], " \t")
		if i := strings.IndexAny(name, " \t"); i >= 0 {
			name = name[:i]
		}
		if name == "" {
			return p.fail(ErrMissingName)
		}
		p.table.name, p.table.hasName = name, true
	case isDirective(p.text, dirEndKey):
		p.table.endkey = strings.TrimPrefix(p.text, dirEndKey)
	}
	return nil
}

func (p *parser) keyname() error {
	if strings.HasPrefix(p.text, dirKeynameEnd) {
		p.table.buildTerminators()
		p.state = stateInterlude
		return nil
	}
	if err := p.misplaced(); err != nil {
		return err
	}
	token, symbol, err := p.fields()
	if err != nil {
		return err
	}
	if p.strict {
		if tokenSeen, symbolSeen := p.table.codec.declared(token, symbol); tokenSeen || symbolSeen {
			return p.fail(ErrDuplicate)
		}
	}
	p.table.codec.set(token, symbol)
	return nil
}

func (p *parser) interlude() error {
	switch {
	case strings.HasPrefix(p.text, dirChardefBegin):
		p.state = stateChardef
	default:
		return p.misplaced()
	}
	return nil
}

func (p *parser) chardef() error {
	if strings.HasPrefix(p.text, dirChardefEnd) {
		p.state = stateDone
		return nil
	}
	if err := p.misplaced(); err != nil {
		return err
	}
	key, char, err := p.fields()
	if err != nil {
		return err
	}
	p.table.index.add(key, char)
	return nil
}

// misplaced rejects section brackets and %endkey inside a section.
func (p *parser) misplaced() error {
	if strings.HasPrefix(p.text, dirKeyname) || strings.HasPrefix(p.text, dirChardef) ||
		isDirective(p.text, dirEndKey) {
		return p.fail(ErrOutOfOrder)
	}
	return nil
}

// fields splits a table line into exactly two non-empty fields separated by
// one space or tab.
func (p *parser) fields() (string, string, error) {
	i := strings.IndexAny(p.text, " \t")
	if i <= 0 || i == len(p.text)-1 {
		return "", "", p.fail(ErrFieldCount)
	}
	left, right := p.text[:i], p.text[i+1:]
	if strings.ContainsAny(right, " \t") {
		return "", "", p.fail(ErrFieldCount)
	}
	return left, right, nil
}

func (p *parser) fail(reason error) error {
	return formatError(p.line, p.text, reason)
}

// isDirective matches "%name" on its own or followed by a separator, so that
// %cname does not match %cnamex.
func isDirective(line, name string) bool {
	if !strings.HasPrefix(line, name) {
		return false
	}
	rest := line[len(name):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}
