package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	defaultEncoder *tiktoken.Tiktoken
	encoderOnce    sync.Once
	encoderErr     error
)

func getEncoder() (*tiktoken.Tiktoken, error) {
	encoderOnce.Do(func() {
		defaultEncoder, encoderErr = tiktoken.GetEncoding("cl100k_base")
	})
	return defaultEncoder, encoderErr
}

// EstimateTokens returns an estimated token count for the given text using
// the cl100k_base encoding. Vendors only report exact usage on the response,
// so request logging relies on this estimate. Falls back to a character-based
// estimate if the encoder cannot be loaded.
func EstimateTokens(text string) int {
	enc, err := getEncoder()
	if err != nil {
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}
