package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/pkoukk/tiktoken-go"

	"docchat/model"
	"docchat/store"
	"docchat/types"
)

const retrievalLimit = 3

// NoAnswerReply is used when retrieval produced a document but the model
// had nothing to say about it.
const NoAnswerReply = "The document does not contain information that answers this question."

var promptTmpl = template.Must(template.New("prompt").Parse(`You are a helpful assistant.
{{range .Documents}}{{.Content}}

{{end}}Question: {{.Question}}

Give a short and relevant analysis based on the information in the documents, answering the question directly, briefly and clearly.`))

// Agent is the retrieval-augmented answer pipeline for one corpus. It is
// built fresh after every upload and never mutated afterwards.
type Agent struct {
	store     store.DocumentStorer
	generator model.Generator
	logger    *slog.Logger
}

func New(storer store.DocumentStorer, generator model.Generator) *Agent {
	return &Agent{
		store:     storer,
		generator: generator,
		logger:    slog.Default(),
	}
}

// Answer retrieves context for the question, renders the prompt and asks
// the generation model. Any retrieval or generation failure is returned
// to the caller; the Retrier decides what to do with it.
func (a *Agent) Answer(ctx context.Context, question string) (string, error) {
	docs, err := a.store.Search(ctx, question, retrievalLimit)
	if err != nil {
		return "", fmt.Errorf("error retrieving documents: %w", err)
	}

	prompt, err := BuildPrompt(docs, question)
	if err != nil {
		return "", err
	}

	if count, err := CountTokens(prompt); err == nil {
		a.logger.Info("prompt rendered", "tokens", count, "chars", len(prompt))
	}

	reply, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return NoAnswerReply, nil
	}
	return reply, nil
}

// BuildPrompt substitutes the retrieved documents and the question into
// the fixed template slots.
func BuildPrompt(docs []types.Document, question string) (string, error) {
	var sb strings.Builder
	data := struct {
		Documents []types.Document
		Question  string
	}{Documents: docs, Question: question}

	if err := promptTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("error rendering prompt: %w", err)
	}
	return sb.String(), nil
}

func CountTokens(s string) (int, error) {
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo") // closest registered encoding for llama-family models
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(s, nil, nil)), nil
}
