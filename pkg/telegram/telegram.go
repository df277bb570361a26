package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/zap"

	"github.com/raayon-bot/raayon/pkg/bus"
)

type TelegramConfig struct {
	Token     string   `json:"token"`
	Proxy     string   `json:"proxy"`
	AllowFrom []string `json:"allow_from"`
}

type TelegramChannel struct {
	*BaseChannel
	bot    *telego.Bot
	config TelegramConfig
	log    *zap.Logger
}

func NewTelegramChannel(cfg TelegramConfig, messageBus *bus.MessageBus, log *zap.Logger) (*TelegramChannel, error) {
	var opts []telego.BotOption

	if cfg.Proxy != "" {
		proxyURL, parseErr := url.Parse(cfg.Proxy)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", cfg.Proxy, parseErr)
		}
		opts = append(opts, telego.WithHTTPClient(&http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyURL(proxyURL),
			},
		}))
	}

	bot, err := telego.NewBot(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	base := NewBaseChannel("telegram", messageBus, cfg.AllowFrom)

	return &TelegramChannel{
		BaseChannel: base,
		bot:         bot,
		config:      cfg,
		log:         log,
	}, nil
}

func (c *TelegramChannel) Start(ctx context.Context) error {
	updates, err := c.bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: 30,
	})
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	c.setRunning(true)
	c.log.Info("telegram bot connected", zap.String("username", c.bot.Username()))

	go c.handleOutbound(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					c.log.Info("updates channel closed")
					return
				}
				if update.Message != nil {
					c.handleMessage(ctx, update)
				} else if update.CallbackQuery != nil {
					c.handleCallbackQuery(ctx, update)
				}
			}
		}
	}()

	return nil
}

func (c *TelegramChannel) Stop(ctx context.Context) error {
	c.log.Info("stopping telegram bot")
	c.setRunning(false)
	return nil
}

func (c *TelegramChannel) handleMessage(ctx context.Context, update telego.Update) {
	message := update.Message
	if message == nil || message.From == nil {
		return
	}

	user := message.From
	userID := fmt.Sprintf("%d", user.ID)
	senderID := userID
	if user.Username != "" {
		senderID = fmt.Sprintf("%s|%s", userID, user.Username)
	}

	content := message.Text
	if content == "" {
		return
	}

	chatID := message.Chat.ID

	ev := bus.InboundEvent{
		UserID: userID,
		ChatID: fmt.Sprintf("%d", chatID),
	}

	if command, ok := parseCommand(content); ok {
		ev.Kind = bus.EventCommand
		ev.Text = command
	} else {
		ev.Kind = bus.EventText
		ev.Text = content
		c.bot.SendChatAction(ctx, tu.ChatAction(tu.ID(chatID), telego.ChatActionTyping))
	}

	c.Publish(senderID, ev)
}

func (c *TelegramChannel) handleCallbackQuery(ctx context.Context, update telego.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	// Answer right away so the button stops spinning whatever the
	// dispatcher decides to do with the press.
	c.bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
		CallbackQueryID: callback.ID,
	})

	userID := fmt.Sprintf("%d", callback.From.ID)
	senderID := userID
	if callback.From.Username != "" {
		senderID = fmt.Sprintf("%s|%s", userID, callback.From.Username)
	}

	chatID, messageID, ok := extractChatAndMessageID(callback.Message)
	if !ok {
		return
	}

	c.Publish(senderID, bus.InboundEvent{
		UserID:    userID,
		ChatID:    fmt.Sprintf("%d", chatID),
		Kind:      bus.EventCallback,
		Data:      callback.Data,
		MessageID: messageID,
	})
}

func (c *TelegramChannel) handleOutbound(ctx context.Context) {
	for {
		msg, ok := c.bus.SubscribeOutbound(ctx)
		if !ok {
			return
		}

		if msg.Channel != "" && msg.Channel != c.name {
			continue
		}

		if err := c.send(ctx, msg); err != nil {
			c.log.Error("send message failed", zap.String("chat", msg.ChatID), zap.Error(err))
		}
	}
}

// send renders one outbound message. An edit target that can no longer be
// edited falls back to a fresh message; edits are an optimization, not a
// delivery guarantee.
func (c *TelegramChannel) send(ctx context.Context, msg bus.OutboundMessage) error {
	if msg.Text == "" {
		return nil
	}

	chatID, err := parseChatID(msg.ChatID)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}

	text := msg.Text
	const maxLength = 4000
	if len(text) > maxLength {
		text = text[:maxLength] + "\n\n[...]"
	}

	keyboard := buildKeyboard(msg.Keyboard)

	if msg.EditMessageID != 0 {
		editMsg := tu.EditMessageText(tu.ID(chatID), msg.EditMessageID, text)
		editMsg.ReplyMarkup = keyboard
		if _, err := c.bot.EditMessageText(ctx, editMsg); err == nil {
			return nil
		}
	}

	tgMsg := tu.Message(tu.ID(chatID), text)
	if keyboard != nil {
		tgMsg.ReplyMarkup = keyboard
	}

	_, err = c.bot.SendMessage(ctx, tgMsg)
	return err
}

func buildKeyboard(rows [][]bus.Button) *telego.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}

	tgRows := make([][]telego.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		tgRow := make([]telego.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			tgRow = append(tgRow, tu.InlineKeyboardButton(b.Label).WithCallbackData(b.Data))
		}
		tgRows = append(tgRows, tgRow)
	}

	return tu.InlineKeyboard(tgRows...)
}

// parseCommand recognizes "/name" and "/name@botname" messages and returns
// the lowercase command name.
func parseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}

	name := strings.Fields(text)[0]
	name = strings.TrimPrefix(name, "/")
	if idx := strings.Index(name, "@"); idx >= 0 {
		name = name[:idx]
	}
	if name == "" {
		return "", false
	}

	return strings.ToLower(name), true
}

func extractChatAndMessageID(msg telego.MaybeInaccessibleMessage) (int64, int, bool) {
	switch m := msg.(type) {
	case *telego.Message:
		return m.Chat.ID, m.MessageID, true
	default:
		return 0, 0, false
	}
}

func parseChatID(chatIDStr string) (int64, error) {
	var id int64
	_, err := fmt.Sscanf(chatIDStr, "%d", &id)
	return id, err
}
