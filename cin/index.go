package cin

import "sort"

// multiMap keeps every value added under a key, in insertion order.
type multiMap map[string][]string

func (m multiMap) add(k, v string) {
	m[k] = append(m[k], v)
}

// get returns a copy so callers cannot reach into a loaded table.
func (m multiMap) get(k string) []string {
	vs, ok := m[k]
	if !ok {
		return nil
	}
	return append([]string(nil), vs...)
}

// index holds the key→characters and character→keys maps. Every add lands in
// both, so each is the transpose of the other.
type index struct {
	chars   multiMap // key → characters
	keys    multiMap // character → keys
	entries int
}

func newIndex() *index {
	return &index{
		chars: make(multiMap),
		keys:  make(multiMap),
	}
}

func (ix *index) add(key, char string) {
	ix.chars.add(key, char)
	ix.keys.add(char, key)
	ix.entries++
}

func (ix *index) sortedKeys() []string {
	out := make([]string, 0, len(ix.chars))
	for k := range ix.chars {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
