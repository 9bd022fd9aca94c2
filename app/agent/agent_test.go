package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"docchat/types"
)

type fakeStore struct {
	docs []types.Document
	err  error
}

func (f *fakeStore) Index(context.Context, types.Document) error { return nil }
func (f *fakeStore) Close() error                                { return nil }
func (f *fakeStore) Search(context.Context, string, int) ([]types.Document, error) {
	return f.docs, f.err
}

type fakeGenerator struct {
	prompt string
	reply  string
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func TestBuildPromptFillsSlots(t *testing.T) {
	docs := []types.Document{
		{ID: uuid.New(), Content: "Revenue grew 10% in Q3."},
	}

	prompt, err := BuildPrompt(docs, "How much did revenue grow?")
	require.NoError(t, err)
	require.Contains(t, prompt, "Revenue grew 10% in Q3.")
	require.Contains(t, prompt, "Question: How much did revenue grow?")
}

func TestAnswerPassesRetrievedContextToModel(t *testing.T) {
	storer := &fakeStore{docs: []types.Document{
		{ID: uuid.New(), Content: "Revenue grew 10% in Q3."},
	}}
	gen := &fakeGenerator{reply: "Revenue grew by 10%."}

	a := New(storer, gen)
	answer, err := a.Answer(context.Background(), "How much did revenue grow?")
	require.NoError(t, err)
	require.Equal(t, "Revenue grew by 10%.", answer)
	require.Contains(t, gen.prompt, "Revenue grew 10% in Q3.")
	require.Contains(t, gen.prompt, "How much did revenue grow?")
}

func TestAnswerMapsBlankReplyToNoAnswer(t *testing.T) {
	storer := &fakeStore{docs: []types.Document{{ID: uuid.New(), Content: "some text"}}}
	gen := &fakeGenerator{reply: "   \n"}

	a := New(storer, gen)
	answer, err := a.Answer(context.Background(), "anything?")
	require.NoError(t, err)
	require.Equal(t, NoAnswerReply, answer)
}

func TestAnswerPropagatesGeneratorError(t *testing.T) {
	storer := &fakeStore{docs: []types.Document{{ID: uuid.New(), Content: "some text"}}}
	gen := &fakeGenerator{err: errFake}

	a := New(storer, gen)
	_, err := a.Answer(context.Background(), "anything?")
	require.ErrorIs(t, err, errFake)
}

var errFake = errors.New("generation failed")
