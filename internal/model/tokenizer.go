package model

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// wordStart marks a piece that begins a new word, following the
// sentencepiece convention.
const wordStart = "▁"

// HFTokenizer encodes text with a HuggingFace tokenizer.json, the same
// vocabulary the served model was trained with.
type HFTokenizer struct {
	mu sync.Mutex
	tk *tokenizer.Tokenizer
}

// NewHFTokenizer loads a tokenizer.json file.
func NewHFTokenizer(path string) (*HFTokenizer, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}

	return &HFTokenizer{tk: tk}, nil
}

// Encode returns the token ids of text without special tokens.
func (t *HFTokenizer) Encode(text string) ([]int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	enc, err := t.tk.EncodeSingle(text, false)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	return enc.Ids, nil
}

// Decode turns ids back into text, skipping special tokens.
func (t *HFTokenizer) Decode(ids []int) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.tk.Decode(ids, true), nil
}

// ApproxTokenizer splits words into pieces of at most CharsPerToken
// characters. It stands in for the real vocabulary when only a remote
// model is available; token counts land close to those of sentencepiece
// models on Latin-script prose.
type ApproxTokenizer struct {
	mu     sync.Mutex
	ids    map[string]int
	pieces []string
}

// NewApproxTokenizer creates an empty ApproxTokenizer. The vocabulary grows
// as text is encoded.
func NewApproxTokenizer() *ApproxTokenizer {
	return &ApproxTokenizer{ids: make(map[string]int)}
}

// Encode returns the piece ids of text.
func (t *ApproxTokenizer) Encode(text string) ([]int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var ids []int
	for _, word := range strings.Fields(text) {
		runes := []rune(word)
		for start := 0; start < len(runes); start += CharsPerToken {
			end := min(start+CharsPerToken, len(runes))

			piece := string(runes[start:end])
			if start == 0 {
				piece = wordStart + piece
			}
			ids = append(ids, t.idLocked(piece))
		}
	}

	return ids, nil
}

// Decode rebuilds text from piece ids. Whitespace is normalized to single
// spaces.
func (t *ApproxTokenizer) Decode(ids []int) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	for _, id := range ids {
		if id < 0 || id >= len(t.pieces) {
			return "", fmt.Errorf("unknown token id %d", id)
		}
		b.WriteString(t.pieces[id])
	}

	text := strings.ReplaceAll(b.String(), wordStart, " ")

	return strings.TrimSpace(text), nil
}

func (t *ApproxTokenizer) idLocked(piece string) int {
	if id, ok := t.ids[piece]; ok {
		return id
	}

	id := len(t.pieces)
	t.ids[piece] = id
	t.pieces = append(t.pieces, piece)

	return id
}
