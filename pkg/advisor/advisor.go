// Package advisor asks a language model for a recommendation based on a
// report's conclusion.
package advisor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/jameshartig/energyreport/pkg/types"
)

const defaultTimeout = 25 * time.Second

var fallbacks = map[string]string{
	"fr": "La fonction n’est pas active actuellement.",
	"en": "This feature is currently not active.",
	"nl": "Deze functie is momenteel niet actief.",
}

var systemPrompts = map[string]string{
	"fr": "Tu es un consultant énergie expert des environnements industriels et tertiaires. " +
		"Tes recommandations doivent être professionnelles, actionnables et adaptées à un public B2B. " +
		"Rédige systématiquement ta réponse en français.",
	"en": "You are an energy management consultant supporting industrial and commercial clients. " +
		"Your recommendations must stay professional, actionable, and tailored for B2B decision makers. " +
		"Always answer in English.",
	"nl": "Je bent een energieconsultant voor zakelijke omgevingen en grote gebouwen. " +
		"Je adviezen moeten professioneel, uitvoerbaar en gericht op een B2B-publiek zijn. " +
		"Antwoord altijd in het Nederlands.",
}

var instructions = map[string]string{
	"fr": "Conclusion du rapport ci-dessous. Formule un conseil professionnel, orienté B2B, en t’appuyant sur les constats fournis.",
	"en": "The following report conclusion summarises the situation. Provide a professional, B2B-oriented piece of advice based on it.",
	"nl": "Onderstaande conclusie vat het rapport samen. Formuleer één professioneel B2B-advies op basis daarvan.",
}

type completer interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Advisor produces a short recommendation for a report. It never fails: any
// problem yields the localized fallback sentence.
type Advisor struct {
	completions completer
	model       string
	timeout     time.Duration
}

// New returns an advisor using the OpenAI API. An empty apiKey disables it.
func New(apiKey, baseURL, model string) *Advisor {
	a := &Advisor{model: model, timeout: defaultTimeout}
	if a.model == "" {
		a.model = openai.ChatModelGPT4oMini
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return a
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")))
	}
	client := openai.NewClient(opts...)
	a.completions = &client.Chat.Completions
	return a
}

// Enabled reports whether an API key was configured.
func (a *Advisor) Enabled() bool {
	return a != nil && a.completions != nil
}

// Fallback returns the sentence used when no advice is available.
func Fallback(language string) string {
	if s, ok := fallbacks[types.NormalizeKey(language)]; ok {
		return s
	}
	return fallbacks[types.DefaultLanguage]
}

func lookup(m map[string]string, language string) string {
	if s, ok := m[types.NormalizeKey(language)]; ok {
		return s
	}
	return m[types.DefaultLanguage]
}

// Advise returns a recommendation written in language for the conclusion.
func (a *Advisor) Advise(ctx context.Context, language, conclusion string) string {
	conclusion = strings.TrimSpace(conclusion)
	if !a.Enabled() || conclusion == "" {
		return Fallback(language)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.completions.New(ctx, openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(lookup(systemPrompts, language)),
			openai.UserMessage("Conclusion :\n" + conclusion + "\n\nInstruction : " + lookup(instructions, language)),
		},
		Temperature:         param.NewOpt(0.6),
		MaxCompletionTokens: param.NewOpt(int64(600)),
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to get advice", slog.Any("error", err))
		return Fallback(language)
	}
	if len(resp.Choices) == 0 {
		slog.WarnContext(ctx, "advice response had no choices")
		return Fallback(language)
	}

	advice := strings.TrimSpace(resp.Choices[0].Message.Content)
	if advice == "" {
		return Fallback(language)
	}
	return advice
}
