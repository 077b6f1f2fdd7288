package knowledge

import (
	"context"
	"fmt"
	"strings"

	"intakebot/pkg/llm"
	"intakebot/pkg/logx"
	"intakebot/pkg/proto"
)

const systemPrompt = `You are a consultant for an educational-consulting
service that helps students apply to international universities.

Your tasks:
1. Answer student questions professionally and warmly
2. Give accurate information about universities and scholarships
3. Point students to the services that fit their needs

Be friendly and professional, and focus on the student's needs.`

// contextTokenBudget caps how much serialized knowledge context is attached
// to a completion request.
const contextTokenBudget = 1500

// Responder answers free text outside the form flow: knowledge base first,
// then the completion model, then a static command-list fallback.
type Responder struct {
	base    *Base
	client  llm.Client // nil disables the model fallback
	counter *llm.TokenCounter
	logger  *logx.Logger
}

// NewResponder creates a responder over the given base and optional client.
func NewResponder(base *Base, client llm.Client) *Responder {
	counter, err := llm.NewTokenCounter()
	if err != nil {
		// Responder still works; truncation falls back to estimation.
		counter = nil
	}
	return &Responder{
		base:    base,
		client:  client,
		counter: counter,
		logger:  logx.NewLogger("knowledge"),
	}
}

// Answer produces the reply directive for an out-of-flow question. It never
// returns an error: model failures degrade to the static fallback.
func (r *Responder) Answer(ctx context.Context, question string) proto.Directive {
	if entry, ok := r.base.Lookup(question); ok {
		r.logger.Debug("knowledge hit for keyword %q", entry.Keyword)
		return proto.Directive{Text: entry.Reply}
	}

	if r.client != nil {
		if text := r.complete(ctx, question); text != "" {
			return proto.Directive{Text: text}
		}
	}

	return r.Fallback()
}

// complete delegates to the completion model with the serialized knowledge
// base as context. Returns "" on any failure.
func (r *Responder) complete(ctx context.Context, question string) string {
	kbContext := r.base.Serialize()
	if r.counter != nil {
		kbContext = r.counter.TruncateToTokens(kbContext, contextTokenBudget)
	}

	req := llm.CompletionRequest{
		Messages: []llm.CompletionMessage{
			{Role: llm.RoleSystem, Content: systemPrompt + "\n\nReference material:\n" + kbContext},
			{Role: llm.RoleUser, Content: question},
		},
		MaxTokens:   llm.DefaultMaxTokens,
		Temperature: llm.DefaultTemperature,
	}

	resp, err := r.client.Complete(ctx, req)
	if err != nil {
		r.logger.Error("completion failed (model %s): %v", r.client.GetModelName(), err)
		return ""
	}
	return strings.TrimSpace(resp.Content)
}

// Fallback returns the static directive listing commands and known topics.
func (r *Responder) Fallback() proto.Directive {
	return proto.Directive{
		Text: fmt.Sprintf(
			"Hello! You can:\n"+
				"- Send /start to apply\n"+
				"- Ask about: %s",
			strings.Join(r.base.Keywords(), ", ")),
	}
}
