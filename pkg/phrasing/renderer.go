package phrasing

import "context"

// Turn mirrors one conversation exchange passed along as phrasing context.
type Turn struct {
	Role    string
	Content string
}

// Renderer turns a structured draft reply into customer-facing text. The
// intake flow never makes decisions from the rendered output, so any
// implementation (including a plain pass-through) keeps the flow correct.
type Renderer interface {
	Render(ctx context.Context, stage string, turns []Turn, userText, draftReply string) string
}

// TemplateRenderer returns the draft reply untouched. It is the default and
// the guaranteed-safe fallback for the LLM renderer.
type TemplateRenderer struct{}

func NewTemplateRenderer() *TemplateRenderer {
	return &TemplateRenderer{}
}

func (r *TemplateRenderer) Render(_ context.Context, _ string, _ []Turn, _ string, draftReply string) string {
	return draftReply
}
