package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVocab(t *testing.T) *Vocabulary {
	t.Helper()
	v, err := NewVocabulary(map[string]int{
		"<pad>": 0, "<s>": 1, "</s>": 2, "<unk>": 3, "|": 4,
		"E": 5, "T": 6, "A": 7, "O": 8, "L": 9, "H": 10,
	})
	require.NoError(t, err)
	return v
}

func TestVocabularyDecode(t *testing.T) {
	v := testVocab(t)

	tests := []struct {
		name string
		ids  []int
		want string
	}{
		{name: "empty", ids: nil, want: ""},
		{name: "only blanks", ids: []int{0, 0, 0}, want: ""},
		{name: "repeats collapse", ids: []int{10, 10, 5, 5, 5, 9, 8, 8}, want: "HELO"},
		{name: "blank separates real repeat", ids: []int{10, 5, 9, 0, 9, 8}, want: "HELLO"},
		{name: "delimiter becomes space", ids: []int{7, 0, 4, 4, 6, 5}, want: "A TE"},
		{name: "edge delimiters trimmed", ids: []int{4, 7, 4, 6, 4}, want: "A T"},
		{name: "blank between delimiters keeps both", ids: []int{7, 4, 0, 4, 6}, want: "A  T"},
		{name: "sentence markers kept", ids: []int{1, 7, 2}, want: "<s>A</s>"},
		{name: "unknown kept", ids: []int{7, 3, 7}, want: "A<unk>A"},
		{name: "out of range ignored", ids: []int{7, 99, -1, 6}, want: "AT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Decode(tt.ids))
		})
	}
}

func TestNewVocabularyErrors(t *testing.T) {
	_, err := NewVocabulary(nil)
	assert.Error(t, err)

	_, err = NewVocabulary(map[string]int{"A": 0})
	assert.ErrorContains(t, err, "blank token")

	_, err = NewVocabulary(map[string]int{"<pad>": 0, "A": -2})
	assert.ErrorContains(t, err, "negative id")
}

func TestLoadVocabulary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, VocabFile)
	require.NoError(t, os.WriteFile(path, []byte(`{"<pad>": 0, "|": 1, "A": 2, "B": 4}`), 0o644))

	v, err := LoadVocabulary(path)
	require.NoError(t, err)
	assert.Equal(t, 5, v.Size())
	assert.Equal(t, "AB A", v.Decode([]int{2, 4, 1, 2}))

	_, err = LoadVocabulary(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))
	_, err = LoadVocabulary(path)
	assert.ErrorContains(t, err, "parse")
}
