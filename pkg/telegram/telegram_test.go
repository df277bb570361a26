package telegram

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raayon-bot/raayon/pkg/bus"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		command string
		ok      bool
	}{
		{"plain command", "/start", "start", true},
		{"command with bot mention", "/menu@raayon_bot", "menu", true},
		{"command with args", "/done now please", "done", true},
		{"uppercase normalized", "/Start", "start", true},
		{"underscore kept", "/clear_all", "clear_all", true},
		{"plain text", "hello", "", false},
		{"slash only", "/", "", false},
		{"mention only", "/@raayon_bot", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			command, ok := parseCommand(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.command, command)
		})
	}
}

func TestBuildKeyboard(t *testing.T) {
	assert.Nil(t, buildKeyboard(nil))
	assert.Nil(t, buildKeyboard([][]bus.Button{}))

	kb := buildKeyboard([][]bus.Button{
		{{Label: "a", Data: "da"}, {Label: "b", Data: "db"}},
		{{Label: "c", Data: "dc"}},
	})
	require.NotNil(t, kb)
	require.Len(t, kb.InlineKeyboard, 2)
	require.Len(t, kb.InlineKeyboard[0], 2)
	assert.Equal(t, "a", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "da", kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "dc", kb.InlineKeyboard[1][0].CallbackData)
}

func TestParseChatID(t *testing.T) {
	id, err := parseChatID("123456789")
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), id)

	id, err = parseChatID("-1001234")
	require.NoError(t, err)
	assert.Equal(t, int64(-1001234), id)

	_, err = parseChatID("not-a-chat")
	assert.Error(t, err)
}

func TestIsAllowed(t *testing.T) {
	tests := []struct {
		name      string
		allowList []string
		senderID  string
		want      bool
	}{
		{"empty list admits everyone", nil, "42|alice", true},
		{"by numeric id", []string{"42"}, "42|alice", true},
		{"by username", []string{"alice"}, "42|alice", true},
		{"by at-username", []string{"@alice"}, "42|alice", true},
		{"id without username", []string{"42"}, "42", true},
		{"full pair entry", []string{"42|alice"}, "42|alice", true},
		{"not listed", []string{"7", "@bob"}, "42|alice", false},
		{"username mismatch", []string{"@bob"}, "42|alice", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewBaseChannel("telegram", bus.NewMessageBus(), tt.allowList)
			assert.Equal(t, tt.want, c.IsAllowed(tt.senderID))
		})
	}
}

func TestPublishRespectsAllowlist(t *testing.T) {
	b := bus.NewMessageBus()
	c := NewBaseChannel("telegram", b, []string{"42"})

	c.Publish("99|mallory", bus.InboundEvent{UserID: "99", Kind: bus.EventText, Text: "hi"})
	c.Publish("42|alice", bus.InboundEvent{UserID: "42", Kind: bus.EventText, Text: "hello"})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	ev, ok := b.ConsumeInbound(ctx)
	require.True(t, ok)
	assert.Equal(t, "42", ev.UserID)
	assert.Equal(t, "telegram", ev.Channel)

	shortCtx, shortCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer shortCancel()
	_, ok = b.ConsumeInbound(shortCtx)
	assert.False(t, ok, "blocked sender must not reach the bus")
}
