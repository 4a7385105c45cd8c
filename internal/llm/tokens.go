package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// fallback ratio when no tokenizer is available
const charsPerToken = 4

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// EstimateTokens returns a best-effort token count for the prompt, for
// logging only. Uses cl100k_base when the encoding can be loaded, otherwise a
// character-count heuristic.
func EstimateTokens(messages []ChatMessage) int {
	encodingOnce.Do(func() {
		encoding, _ = tiktoken.GetEncoding("cl100k_base")
	})

	total := 0
	for _, m := range messages {
		if encoding != nil {
			total += len(encoding.Encode(m.Content, nil, nil))
		} else {
			total += len(m.Content) / charsPerToken
		}
	}
	return total
}
