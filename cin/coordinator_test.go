package cin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadPair(t *testing.T) *Coordinator {
	t.Helper()
	phonetic, err := Load("testdata/phonetic-mini.cin", WithTerminatorInKey())
	require.NoError(t, err)
	cangjie, err := Load("testdata/cangjie-mini.cin")
	require.NoError(t, err)
	return NewCoordinator(phonetic, cangjie)
}

func feed(t *testing.T, c *Coordinator, symbols ...string) Step {
	t.Helper()
	var step Step
	for _, s := range symbols {
		var err error
		step, err = c.OnSymbol(step.Buffer, s)
		require.NoError(t, err, "symbol %q", s)
	}
	return step
}

func TestCoordinatorScenario(t *testing.T) {
	tbl := mustParse(t, scenarioTable)
	c := NewCoordinator(tbl, tbl)

	step := feed(t, c, "ㄇ")
	assert.False(t, step.Committed)
	assert.Equal(t, []string{"ㄇ"}, step.Buffer)

	step, err := c.OnSymbol(step.Buffer, Space)
	require.NoError(t, err)
	assert.True(t, step.Committed)
	assert.Equal(t, []string{"ㄇ"}, step.Buffer)
	require.Len(t, step.Results, 1)
	assert.Equal(t, "一", step.Results[0].Char)
	assert.Equal(t, []string{"ㄇ"}, step.Results[0].Encodings)
	assert.Equal(t, "一：ㄇ", step.Results[0].String())

	step = feed(t, c, "ㄇ", "ㄋ", Space)
	require.Len(t, step.Results, 1)
	assert.Equal(t, "不：ㄇㄋ", step.Results[0].String())
}

func TestCoordinatorToneTerminator(t *testing.T) {
	c := loadPair(t)

	step := feed(t, c, "ㄅ", "ㄚ")
	assert.Equal(t, []string{"ㄅ", "ㄚ"}, step.Buffer)

	step, err := c.OnSymbol(step.Buffer, "ˋ")
	require.NoError(t, err)
	assert.True(t, step.Committed)
	require.Len(t, step.Results, 1)
	assert.Equal(t, "爸：金戈金", step.Results[0].String())

	step = feed(t, c, "ㄇ", "ㄚ", "˙")
	require.Len(t, step.Results, 1)
	assert.Equal(t, "嗎：口尸手火", step.Results[0].String())
}

const declaredTerminatorTable = `%endkey .
%keyname begin
a ㄇ
b ㄋ
. >
%keyname end
%chardef begin
a 一
ab 不
a. 乙
%chardef end
`

func TestCoordinatorDeclaredTerminator(t *testing.T) {
	tbl := mustParse(t, declaredTerminatorTable)
	c := NewCoordinator(tbl, tbl)

	step, err := c.OnSymbol([]string{"ㄇ"}, ">")
	require.NoError(t, err)
	assert.True(t, step.Committed)
	require.Len(t, step.Results, 1)
	assert.Equal(t, "一：ㄇ", step.Results[0].String())

	step = feed(t, c, "ㄇ", "ㄋ", ">")
	require.Len(t, step.Results, 1)
	assert.Equal(t, "不", step.Results[0].Char)
}

func TestCoordinatorTerminatorInKey(t *testing.T) {
	tbl := mustParse(t, declaredTerminatorTable, WithTerminatorInKey())
	c := NewCoordinator(tbl, tbl)

	step := feed(t, c, "ㄇ", ">")
	require.Len(t, step.Results, 1)
	assert.Equal(t, "乙", step.Results[0].Char)

	// Space is never part of the key.
	step = feed(t, c, "ㄇ", Space)
	require.Len(t, step.Results, 1)
	assert.Equal(t, "一", step.Results[0].Char)
}

func TestCoordinatorToneWithoutOption(t *testing.T) {
	phonetic, err := Load("testdata/phonetic-mini.cin")
	require.NoError(t, err)
	c := NewCoordinator(phonetic, phonetic)

	step := feed(t, c, "ㄅ", "ㄚ", "ˋ")
	require.True(t, step.Committed)
	var got []string
	for _, a := range step.Results {
		got = append(got, a.Char)
	}
	assert.Equal(t, []string{"八", "巴", "疤"}, got)
}

func TestCoordinatorSpaceCandidates(t *testing.T) {
	c := loadPair(t)

	step := feed(t, c, "ㄅ", "ㄚ", Space)
	require.True(t, step.Committed)
	var got []string
	for _, a := range step.Results {
		got = append(got, a.String())
	}
	assert.Equal(t, []string{"八：卜大月", "巴：卜口月", "疤：大手卜口月"}, got)
}

func TestCoordinatorMissingReference(t *testing.T) {
	c := loadPair(t)

	step := feed(t, c, "ㄉ", "ㄧ", Space)
	require.Len(t, step.Results, 1)
	assert.Equal(t, "低：人竹人", step.Results[0].String())

	// A character the reference table does not know renders ？.
	tbl := mustParse(t, scenarioTable)
	c = NewCoordinator(c.Compose(), tbl)
	step = feed(t, c, "ㄇ", "ㄧ", "ˋ")
	require.Len(t, step.Results, 1)
	assert.Equal(t, "密", step.Results[0].Char)
	assert.Nil(t, step.Results[0].Encodings)
	assert.Equal(t, "密：？", step.Results[0].String())
}

func TestCoordinatorNoMatch(t *testing.T) {
	c := loadPair(t)

	step := feed(t, c, "ㄈ", Space)
	assert.True(t, step.Committed)
	assert.Empty(t, step.Results)
}

func TestCoordinatorEmptyCommit(t *testing.T) {
	c := loadPair(t)

	for _, term := range c.Compose().Terminators() {
		step, err := c.OnSymbol(nil, term)
		require.NoError(t, err)
		assert.True(t, step.Committed, "terminator %q", term)
		assert.Empty(t, step.Buffer)
		assert.Empty(t, step.Results)
	}
}

func TestCoordinatorUnknownSymbol(t *testing.T) {
	c := loadPair(t)

	step := feed(t, c, "ㄅ", "?")
	assert.Equal(t, []string{"ㄅ", "?"}, step.Buffer)

	_, err := c.OnSymbol(step.Buffer, Space)
	require.Error(t, err)
	assert.True(t, IsUnknownToken(err))
}

func TestCoordinatorErase(t *testing.T) {
	c := loadPair(t)

	buf := []string{"ㄅ", "ㄚ"}
	out := c.OnErase(buf)
	assert.Equal(t, []string{"ㄅ"}, out)
	assert.Equal(t, []string{"ㄅ", "ㄚ"}, buf)

	out = c.OnErase(c.OnErase(out))
	assert.Empty(t, out)
}

func TestCoordinatorBufferNotAliased(t *testing.T) {
	c := loadPair(t)

	buf := make([]string, 1, 4)
	buf[0] = "ㄅ"
	a, err := c.OnSymbol(buf, "ㄚ")
	require.NoError(t, err)
	b, err := c.OnSymbol(buf, "ㄛ")
	require.NoError(t, err)
	assert.Equal(t, []string{"ㄅ", "ㄚ"}, a.Buffer)
	assert.Equal(t, []string{"ㄅ", "ㄛ"}, b.Buffer)
}

func TestCoordinatorAnnotate(t *testing.T) {
	c := loadPair(t)

	got, err := c.Annotate("八 媽\t好")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "八：卜大月", got[0].String())
	assert.Equal(t, "媽：女尸尸", got[1].String())
	assert.Equal(t, "好：？", got[2].String())

	got, err = c.Annotate("   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCoordinatorAnnotateSameTable(t *testing.T) {
	tbl := mustParse(t, scenarioTable)
	c := NewCoordinator(tbl, tbl)

	got, err := c.Annotate("一不")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "一：ㄇ", got[0].String())
	assert.Equal(t, "不：ㄇㄋ", got[1].String())
}
