package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pharmaclic/internal/model"
)

type seedSource struct{}

func (seedSource) Snapshot() model.StoreData { return model.SeedStoreData() }

type stubGenerator struct {
	text   string
	err    error
	prompt string
}

func (g *stubGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	g.prompt = prompt
	return g.text, g.err
}

func newTestService(gen Generator) *service {
	svc := NewService(seedSource{}, gen).(*service)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestAskSendsSummaryAndKeepsHistory(t *testing.T) {
	gen := &stubGenerator{text: "You have one antibiotic."}
	svc := newTestService(gen)

	reply, err := svc.Ask(context.Background(), "u-1", "  which antibiotics do I stock?  ")
	require.NoError(t, err)
	require.Equal(t, "You have one antibiotic.", reply.Content)
	require.Contains(t, gen.prompt, `"totalProducts":4`)
	require.Contains(t, gen.prompt, `"antibiotics":["Amoxicilina 500mg"]`)
	require.Contains(t, gen.prompt, "User question: which antibiotics do I stock?")

	history := svc.History("u-1")
	require.Len(t, history, 3)
	require.Equal(t, RoleAssistant, history[0].Role)
	require.Equal(t, RoleUser, history[1].Role)
	require.Equal(t, reply.Content, history[2].Content)

	require.Len(t, svc.History("u-2"), 1)
	svc.Reset("u-1")
	require.Len(t, svc.History("u-1"), 1)
}

func TestAskFixedAnswers(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		answer  string
		wantErr bool
	}{
		{"missing key", ErrMissingAPIKey, MissingKeyAnswer, true},
		{"remote failure", errors.New("connection refused"), RemoteErrorAnswer, true},
		{"empty answer", ErrEmptyAnswer, EmptyAnswer, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(&stubGenerator{err: tc.err})
			reply, err := svc.Ask(context.Background(), "u-1", "hi")
			require.Equal(t, tc.answer, reply.Content)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrRemoteAssistantUnavailable)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	svc := newTestService(&stubGenerator{})
	_, err := svc.Ask(context.Background(), "u-1", "   ")
	require.ErrorIs(t, err, ErrEmptyQuestion)
	require.Len(t, svc.History("u-1"), 1)
}
