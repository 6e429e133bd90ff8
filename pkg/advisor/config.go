package advisor

import (
	"github.com/levenlabs/go-lflag"
)

// Configured returns an advisor configured from flags. It is disabled unless
// an API key is given.
func Configured() *Advisor {
	apiKey := lflag.String("openai-api-key", "", "OpenAI API key used to add a recommendation to reports")
	baseURL := lflag.String("openai-base-url", "", "Base URL for an OpenAI compatible API")
	model := lflag.String("openai-model", "gpt-4o-mini", "Model used for recommendations")

	a := &Advisor{}
	lflag.Do(func() {
		*a = *New(*apiKey, *baseURL, *model)
	})
	return a
}
