package phrasing

import (
	"context"
	"strings"

	"loan-intake-be/pkg/llm"
)

const systemPrompt = `You are a professional digital sales assistant for a large NBFC in India,
specializing in personal loans.

Your role:
- Speak clearly, politely, and confidently
- Sound like a trained human loan sales executive
- Guide customers step by step
- Acknowledge inputs and ask for the next required detail

Strict rules:
- Never mention internal systems, checks, agents, tools, or logic
- Never mention words like verification, eligibility engine, FOIR, model, API, or JSON
- Never output structured data, bullet-point internals, or technical explanations
- Never contradict the system's decisions
- If unsure, politely ask the customer to provide the requested information

Your responses are shown directly to customers.`

// Phrases that would leak internals to the customer. Any hit discards the
// model output in favor of the template reply.
var forbiddenPhrases = []string{
	"{", "}", "[", "]",
	"verify", "verification",
	"eligibility", "engine",
	"tool", "agent", "worker",
	"json", "api", "system",
	"foir", "risk band",
}

const historyWindow = 12

// LLMRenderer rewrites template replies through an LLM for tone. It degrades
// to the draft reply on any provider error or leakage-filter hit, so the
// conversation never stalls on the language layer.
type LLMRenderer struct {
	provider llm.LLMProvider
}

func NewLLMRenderer(provider llm.LLMProvider) *LLMRenderer {
	return &LLMRenderer{provider: provider}
}

func (r *LLMRenderer) Render(ctx context.Context, stage string, turns []Turn, userText, draftReply string) string {
	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "system", Content: "Conversation stage: " + stage},
	}

	start := 0
	if len(turns) > historyWindow {
		start = len(turns) - historyWindow
	}
	for _, t := range turns[start:] {
		if (t.Role == "user" || t.Role == "assistant") && t.Content != "" {
			messages = append(messages, llm.Message{Role: t.Role, Content: t.Content})
		}
	}

	messages = append(messages, llm.Message{
		Role: "user",
		Content: "Customer said: " + userText + "\n\n" +
			"Rephrase the following reply in your own words without changing its meaning:\n" + draftReply,
	})

	reply, err := r.provider.Chat(ctx, messages, llm.WithTemperature(0.6), llm.WithMaxTokens(220))
	if err != nil {
		return draftReply
	}

	reply = strings.TrimSpace(reply)
	if !acceptable(reply) {
		return draftReply
	}
	return reply
}

func acceptable(reply string) bool {
	if len(reply) < 5 {
		return false
	}
	lower := strings.ToLower(reply)
	for _, phrase := range forbiddenPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	return true
}
