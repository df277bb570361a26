package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/raayon-bot/raayon/pkg/model"
)

func TestGenerateIdeasEmptyHistorySkipsBackend(t *testing.T) {
	rig := newTestRig(t)

	text, ok := rig.engine.GenerateIdeas(context.Background(), "u1", CategoryGuides)
	assert.False(t, ok)
	assert.Equal(t, fmt.Sprintf(textNoEntriesFmt, CategoryGuides), text)
	assert.Zero(t, rig.provider.calls(), "backend must not be called with no history")
}

func TestGenerateIdeasBuildsPromptFromHistory(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	for _, content := range []string{"רעיון ראשון", "רעיון שני", "רעיון שלישי"} {
		_, err := rig.store.Save(ctx, "u1", content, CategoryGuides)
		require.NoError(t, err)
	}
	_, err := rig.store.Save(ctx, "u1", "לא שייך", CategoryBots)
	require.NoError(t, err)

	rig.provider.reply = "  1. הצעה חדשה  \n"
	text, ok := rig.engine.GenerateIdeas(ctx, "u1", CategoryGuides)
	assert.True(t, ok)
	assert.Equal(t, "1. הצעה חדשה", text, "backend text returned verbatim, trimmed")

	require.Equal(t, 1, rig.provider.calls())
	req := rig.provider.requests[0]
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)

	prompt := req.Messages[1].Content
	for _, content := range []string{"רעיון ראשון", "רעיון שני", "רעיון שלישי"} {
		assert.Contains(t, prompt, "- "+content)
	}
	assert.NotContains(t, prompt, "לא שייך", "other categories stay out of the prompt")

	// Newest first, stable.
	first := strings.Index(prompt, "רעיון שלישי")
	last := strings.Index(prompt, "רעיון ראשון")
	assert.Less(t, first, last)

	assert.Equal(t, 2500, req.MaxTokens)
	assert.InDelta(t, 0.7, req.Temperature, 1e-9)
}

func TestGenerateIdeasRespectsHistoryLimit(t *testing.T) {
	st := newFakeStore()
	provider := &fakeProvider{reply: "ok"}
	eng, err := New(st, provider, newTestRig(t).bus, zap.NewNop(), Options{HistoryLimit: 2})
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := st.Save(ctx, "u1", fmt.Sprintf("note %d", i), CategoryBots)
		require.NoError(t, err)
	}

	_, ok := eng.GenerateIdeas(ctx, "u1", CategoryBots)
	require.True(t, ok)

	prompt := provider.requests[0].Messages[1].Content
	assert.Contains(t, prompt, "note 4")
	assert.Contains(t, prompt, "note 3")
	assert.NotContains(t, prompt, "note 2")
}

func TestGenerateIdeasBackendFailure(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	_, err := rig.store.Save(ctx, "u1", "רעיון", CategoryBots)
	require.NoError(t, err)

	rig.provider.err = errors.New("rate limited")
	text, ok := rig.engine.GenerateIdeas(ctx, "u1", CategoryBots)
	assert.False(t, ok)
	assert.Equal(t, textGenerateFailed, text)

	// No entries created or altered by a failed request.
	assert.Equal(t, []string{"רעיון"}, rig.store.contents("u1", ""))
}

func TestGenerateIdeasEmptyResponseIsFailure(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	_, err := rig.store.Save(ctx, "u1", "רעיון", CategoryBots)
	require.NoError(t, err)

	rig.provider.reply = "   \n\t "
	text, ok := rig.engine.GenerateIdeas(ctx, "u1", CategoryBots)
	assert.False(t, ok)
	assert.Equal(t, textGenerateFailed, text)
}

func TestGenerateIdeasStoreFailure(t *testing.T) {
	rig := newTestRig(t)

	rig.store.queryErr = errors.New("db gone")
	text, ok := rig.engine.GenerateIdeas(context.Background(), "u1", CategoryBots)
	assert.False(t, ok)
	assert.Equal(t, textGenerateFailed, text)
	assert.Zero(t, rig.provider.calls())
}

// A backend that never answers is cut off by the pipeline timeout.
func TestGenerateIdeasTimeout(t *testing.T) {
	st := newFakeStore()
	ctx := context.Background()
	_, err := st.Save(ctx, "u1", "רעיון", CategoryBots)
	require.NoError(t, err)

	stuck := model.ProviderFunc(func(ctx context.Context, req *model.Request) (*model.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	eng, err := New(st, stuck, newTestRig(t).bus, zap.NewNop(), Options{Timeout: 20 * time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	text, ok := eng.GenerateIdeas(ctx, "u1", CategoryBots)
	assert.False(t, ok)
	assert.Equal(t, textGenerateFailed, text)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestIdeaActionRendersThinkingThenResult(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	_, err := rig.store.Save(ctx, "u1", "רעיון לבוט", CategoryBots)
	require.NoError(t, err)
	rig.provider.reply = "1. עוד רעיון לבוט"

	rig.callback("u1", cbIdeaBots)
	msgs := rig.drain(t)
	require.Len(t, msgs, 2)
	assert.Equal(t, fmt.Sprintf(textThinkingFmt, CategoryBots), msgs[0].Text)
	assert.Equal(t, fmt.Sprintf(textIdeasFmt, "1. עוד רעיון לבוט"), msgs[1].Text)
	assert.Equal(t, 7, msgs[1].EditMessageID)
	assert.NotEmpty(t, msgs[1].Keyboard)
}
