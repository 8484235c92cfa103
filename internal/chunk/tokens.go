package chunk

import (
	"log"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const tokenEncoding = "cl100k_base"

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
)

// countTokens returns the BPE token count of text. Token counts are
// advisory metadata; if the encoding cannot be loaded the count is simply
// omitted.
func countTokens(text string) (int, bool) {
	encoderOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(tokenEncoding)
		if err != nil {
			log.Printf("token encoding unavailable, skipping token counts: %v", err)
			return
		}
		encoder = enc
	})
	if encoder == nil {
		return 0, false
	}
	return len(encoder.Encode(text, nil, nil)), true
}
