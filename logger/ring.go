package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// Ring keeps the most recent log lines in memory.
type Ring struct {
	mu    sync.Mutex
	lines []string
	size  int
	total int
}

// NewRing returns a ring holding at most size lines.
func NewRing(size int) *Ring {
	return &Ring{size: size}
}

// Append adds a line, dropping the oldest once the ring is full.
func (r *Ring) Append(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
	if len(r.lines) > r.size {
		r.lines = r.lines[len(r.lines)-r.size:]
	}
	r.total++
}

// Lines returns a copy of the buffered lines, oldest first.
func (r *Ring) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Total counts every line ever appended, including dropped ones.
func (r *Ring) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// Core returns a zap core writing into the ring.
func (r *Ring) Core(enab zapcore.LevelEnabler) zapcore.Core {
	cfg := zapcore.EncoderConfig{
		TimeKey:          "T",
		LevelKey:         "L",
		NameKey:          "N",
		MessageKey:       "M",
		LineEnding:       "\n",
		EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
	return &ringCore{
		LevelEnabler: enab,
		enc:          zapcore.NewConsoleEncoder(cfg),
		ring:         r,
	}
}

type ringCore struct {
	zapcore.LevelEnabler
	enc  zapcore.Encoder
	ring *Ring
}

func (c *ringCore) With(fields []zapcore.Field) zapcore.Core {
	enc := c.enc.Clone()
	for _, f := range fields {
		f.AddTo(enc)
	}
	return &ringCore{LevelEnabler: c.LevelEnabler, enc: enc, ring: c.ring}
}

func (c *ringCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *ringCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	c.ring.Append(strings.TrimRight(buf.String(), "\n"))
	buf.Free()
	return nil
}

func (c *ringCore) Sync() error { return nil }
