package cin

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableScenarioLookups(t *testing.T) {
	tbl := mustParse(t, scenarioTable)

	chars, err := tbl.Lookup("a", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"一"}, chars)

	chars, err = tbl.Lookup("ㄇㄋ", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"不"}, chars)

	keys, err := tbl.ReverseLookup("一", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"ㄇ"}, keys)

	keys, err = tbl.ReverseLookup("不", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"ab"}, keys)
}

func TestTableAbsent(t *testing.T) {
	tbl := mustParse(t, scenarioTable)

	chars, err := tbl.Lookup("b", false)
	assert.NoError(t, err)
	assert.Nil(t, chars)

	chars, err = tbl.Lookup("ㄋ", true)
	assert.NoError(t, err)
	assert.Nil(t, chars)

	keys, err := tbl.ReverseLookup("好", true)
	assert.NoError(t, err)
	assert.Nil(t, keys)

	_, err = tbl.Lookup("ㄅ", true)
	assert.True(t, IsUnknownToken(err))
}

func TestTableDeclarationOrder(t *testing.T) {
	tbl, err := Load("testdata/phonetic-mini.cin")
	require.NoError(t, err)

	chars, err := tbl.Lookup("ㄅㄚ", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"八", "巴", "疤"}, chars)

	cj, err := Load("testdata/cangjie-mini.cin")
	require.NoError(t, err)

	chars, err = cj.Lookup("rsqf", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"嗎", "哪"}, chars)
}

func TestTableMultipleKeys(t *testing.T) {
	src := `%keyname begin
a ㄇ
b ㄋ
%keyname end
%chardef begin
ab 不
a 不
ab 不
%chardef end
`
	tbl := mustParse(t, src)

	keys, err := tbl.ReverseLookup("不", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"ㄇㄋ", "ㄇ", "ㄇㄋ"}, keys)

	chars, err := tbl.Lookup("ab", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"不", "不"}, chars)
}

func TestTableReverseLookupUnencodable(t *testing.T) {
	// Key "c" never appears in the keyname section.
	src := "%keyname begin\na ㄇ\n%keyname end\n%chardef begin\nc 字\n%chardef end\n"
	tbl := mustParse(t, src)

	keys, err := tbl.ReverseLookup("字", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, keys)

	_, err = tbl.ReverseLookup("字", true)
	assert.True(t, IsUnknownToken(err))
}

// Every (key, char) pair of the forward map appears in the reverse map, with
// the same multiplicity.
func TestTableTranspose(t *testing.T) {
	for _, file := range []string{"testdata/phonetic-mini.cin", "testdata/cangjie-mini.cin"} {
		t.Run(file, func(t *testing.T) {
			tbl, err := Load(file)
			require.NoError(t, err)

			var forward, reverse []string
			for k, chars := range tbl.index.chars {
				for _, c := range chars {
					forward = append(forward, k+"\x00"+c)
				}
			}
			for c, keys := range tbl.index.keys {
				for _, k := range keys {
					reverse = append(reverse, k+"\x00"+c)
				}
			}
			sort.Strings(forward)
			sort.Strings(reverse)
			if diff := cmp.Diff(forward, reverse); diff != "" {
				t.Errorf("transpose mismatch (-forward +reverse):\n%s", diff)
			}
			assert.Len(t, forward, tbl.Len())
		})
	}
}

func TestTableResultsAreCopies(t *testing.T) {
	tbl := mustParse(t, scenarioTable)

	chars, _ := tbl.Lookup("a", false)
	chars[0] = "x"
	keys, _ := tbl.ReverseLookup("一", true)
	keys[0] = "x"

	chars, _ = tbl.Lookup("a", false)
	assert.Equal(t, []string{"一"}, chars)
	keys, _ = tbl.ReverseLookup("一", false)
	assert.Equal(t, []string{"a"}, keys)
}

func TestTableKeysAndStats(t *testing.T) {
	tbl := mustParse(t, "%cname 測試\n"+scenarioTable)

	assert.Equal(t, []string{"a", "ab"}, tbl.Keys())
	want := TableStats{
		Name:        "測試",
		Tokens:      2,
		Keys:        2,
		Chars:       2,
		Entries:     2,
		EndKeys:     Space,
		Terminators: []string{Space},
	}
	if diff := cmp.Diff(want, tbl.Stats()); diff != "" {
		t.Errorf("Stats() mismatch (-want +got):\n%s", diff)
	}
}
