package services

import (
	"context"
	"errors"
)

// fakeModel is a scripted TextGenerator. Responses are consumed in call
// order; once exhausted, every further call errors.
type fakeModel struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (f *fakeModel) GenerateText(_ context.Context, prompt string, _ float32) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("fake model: no scripted response left")
	}
	response := f.responses[0]
	f.responses = f.responses[1:]
	return response, nil
}

func (f *fakeModel) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, _ int) (string, error) {
	return f.GenerateText(ctx, prompt, temperature)
}

// fakeRetriever returns a fixed context snippet or an error.
type fakeRetriever struct {
	context string
	err     error
	queries []string
}

func (f *fakeRetriever) RetrieveContext(_ context.Context, query string) (string, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return "", f.err
	}
	return f.context, nil
}
