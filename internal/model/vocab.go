package model

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Token conventions of wav2vec2 CTC vocabularies.
const (
	BlankToken     = "<pad>"
	DelimiterToken = "|"
)

// Vocabulary maps model class indices to output tokens.
type Vocabulary struct {
	tokens []string
	blank  int
}

// LoadVocabulary reads a token-to-id JSON object such as vocab.json.
func LoadVocabulary(path string) (*Vocabulary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}

	var ids map[string]int
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary: %w", err)
	}

	return NewVocabulary(ids)
}

// NewVocabulary builds a vocabulary from a token-to-id map. The map must
// contain the blank token.
func NewVocabulary(ids map[string]int) (*Vocabulary, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("vocabulary is empty")
	}

	size := 0
	for tok, id := range ids {
		if id < 0 {
			return nil, fmt.Errorf("token %q has negative id %d", tok, id)
		}
		if id+1 > size {
			size = id + 1
		}
	}

	tokens := make([]string, size)
	for tok, id := range ids {
		tokens[id] = tok
	}

	blank, ok := ids[BlankToken]
	if !ok {
		return nil, fmt.Errorf("vocabulary has no blank token %q", BlankToken)
	}

	return &Vocabulary{tokens: tokens, blank: blank}, nil
}

// Size is the number of class indices the vocabulary covers.
func (v *Vocabulary) Size() int {
	return len(v.tokens)
}

// Decode applies CTC collapsing to a per-frame label sequence: consecutive
// repeats merge, blanks are dropped, and the word delimiter becomes a space.
// Other special tokens are emitted verbatim and only the ends are trimmed,
// matching batch_decode without skip_special_tokens.
func (v *Vocabulary) Decode(ids []int) string {
	var b strings.Builder
	prev := -1

	for _, id := range ids {
		if id == prev {
			continue
		}
		prev = id

		if id == v.blank || id < 0 || id >= len(v.tokens) {
			continue
		}

		if tok := v.tokens[id]; tok == DelimiterToken {
			b.WriteByte(' ')
		} else {
			b.WriteString(tok)
		}
	}

	return strings.TrimSpace(b.String())
}
