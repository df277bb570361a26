// Package engine implements the conversation core of the bot: the per-user
// dialog state machine, the dispatcher, the history view and the idea
// generation pipeline. It speaks to the outside world only through the
// message bus, the entry store and the model provider.
package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/raayon-bot/raayon/pkg/bus"
	"github.com/raayon-bot/raayon/pkg/model"
	"github.com/raayon-bot/raayon/pkg/store"
)

type Options struct {
	PageSize     int
	HistoryLimit int
	Timeout      time.Duration
	MaxTokens    int
	Temperature  float64
}

func (o *Options) fillDefaults() {
	if o.PageSize <= 0 {
		o.PageSize = 10
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = 100
	}
	if o.Timeout <= 0 {
		o.Timeout = 60 * time.Second
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 2500
	}
	if o.Temperature <= 0 {
		o.Temperature = 0.7
	}
}

type handlerFunc func(ctx context.Context, ev bus.InboundEvent, st *userState)

type Engine struct {
	store    store.Store
	provider model.Provider
	bus      *bus.MessageBus
	log      *zap.Logger
	opts     Options

	users sync.Map // userID -> *userState

	commands map[string]handlerFunc
	actions  map[string]handlerFunc
}

func New(st store.Store, provider model.Provider, messageBus *bus.MessageBus, log *zap.Logger, opts Options) (*Engine, error) {
	opts.fillDefaults()

	e := &Engine{
		store:    st,
		provider: provider,
		bus:      messageBus,
		log:      log,
		opts:     opts,
	}

	e.commands = map[string]handlerFunc{
		"start":     e.handleStart,
		"menu":      e.handleMenu,
		"done":      e.handleDone,
		"cancel":    e.handleCancel,
		"clear_all": e.handleClearAll,
	}
	e.actions = map[string]handlerFunc{
		cbIdeaBots:   e.ideaAction(CategoryBots),
		cbIdeaGuides: e.ideaAction(CategoryGuides),
		cbMyIdeas:    func(ctx context.Context, ev bus.InboundEvent, st *userState) { e.showHistory(ctx, ev, 0) },
		cbAddList:    e.handleStartList,
		cbShowMenu:   e.handleMenu,
	}

	if err := e.validateRoutes(); err != nil {
		return nil, err
	}

	return e, nil
}

// validateRoutes fails startup when a routing table lost an expected entry,
// so unrecognized events stay a deliberate no-op rather than a silent gap.
func (e *Engine) validateRoutes() error {
	for _, cmd := range []string{"start", "menu", "done", "cancel", "clear_all"} {
		if e.commands[cmd] == nil {
			return fmt.Errorf("missing command handler: /%s", cmd)
		}
	}
	for _, action := range []string{cbIdeaBots, cbIdeaGuides, cbMyIdeas, cbAddList, cbShowMenu} {
		if e.actions[action] == nil {
			return fmt.Errorf("missing action handler: %s", action)
		}
	}
	return nil
}

// Run consumes inbound events until the context is cancelled. Each event is
// handled on its own goroutine; per-user serialization happens inside
// HandleEvent via the user's state lock.
func (e *Engine) Run(ctx context.Context) {
	for {
		ev, ok := e.bus.ConsumeInbound(ctx)
		if !ok {
			return
		}
		go e.HandleEvent(ctx, ev)
	}
}

// HandleEvent routes one inbound event. Routing priority: pagination
// callbacks, then the active flow, then the command/action tables.
// Anything unrecognized is dropped.
func (e *Engine) HandleEvent(ctx context.Context, ev bus.InboundEvent) {
	if ev.UserID == "" {
		return
	}

	st := e.userState(ev.UserID)
	st.mu.Lock()
	defer st.mu.Unlock()

	switch ev.Kind {
	case bus.EventCallback:
		e.dispatchCallback(ctx, ev, st)
	case bus.EventCommand:
		if h, ok := e.commands[strings.ToLower(ev.Text)]; ok {
			h(ctx, ev, st)
		}
	case bus.EventText:
		e.dispatchText(ctx, ev, st)
	}
}

func (e *Engine) dispatchCallback(ctx context.Context, ev bus.InboundEvent, st *userState) {
	data := ev.Data

	// Pagination wins over everything; the info button is a no-op.
	if strings.HasPrefix(data, cbPagePrefix) {
		if data == cbPageInfo {
			return
		}
		page, err := strconv.Atoi(strings.TrimPrefix(data, cbPagePrefix))
		if err != nil {
			return
		}
		e.showHistory(ctx, ev, page)
		return
	}

	if strings.HasPrefix(data, cbCategoryPrefix) {
		e.handleCategoryChoice(ctx, ev, st, strings.TrimPrefix(data, cbCategoryPrefix))
		return
	}

	if h, ok := e.actions[data]; ok {
		h(ctx, ev, st)
	}
}

func (e *Engine) dispatchText(ctx context.Context, ev bus.InboundEvent, st *userState) {
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return
	}

	switch st.state {
	case StateAwaitingItems:
		st.items = append(st.items, text)
		e.reply(ev, fmt.Sprintf(textListAckFmt, len(st.items)), nil)
	default:
		// Free text anywhere else starts a fresh single-entry capture; the
		// newest flow takes ownership of the scratch state.
		st.reset()
		st.state = StateAwaitingCategory
		st.pending = text
		e.reply(ev, textAskCategory, categoryKeyboard())
	}
}

func (e *Engine) handleStart(ctx context.Context, ev bus.InboundEvent, st *userState) {
	e.reply(ev, textWelcome, mainMenuKeyboard())
}

func (e *Engine) handleMenu(ctx context.Context, ev bus.InboundEvent, st *userState) {
	e.render(ev, textMenuTitle, mainMenuKeyboard(), ev.MessageID)
}

func (e *Engine) handleCancel(ctx context.Context, ev bus.InboundEvent, st *userState) {
	wasList := st.state == StateAwaitingItems || st.state == StateAwaitingCategoryForList
	st.reset()
	if wasList {
		e.reply(ev, textListCancelled, mainMenuKeyboard())
	} else {
		e.reply(ev, textCancelled, mainMenuKeyboard())
	}
}

func (e *Engine) handleClearAll(ctx context.Context, ev bus.InboundEvent, st *userState) {
	deleted, err := e.store.DeleteAll(ctx, ev.UserID)
	if err != nil {
		e.log.Error("delete all entries failed", zap.String("user", ev.UserID), zap.Error(err))
		e.reply(ev, textSomethingWrong, backToMenuKeyboard())
		return
	}
	e.reply(ev, fmt.Sprintf(textDeletedFmt, deleted), nil)
}

// reply sends a new message to the event's chat.
func (e *Engine) reply(ev bus.InboundEvent, text string, keyboard [][]bus.Button) {
	e.render(ev, text, keyboard, 0)
}

// render sends a message, editing editMessageID in place when it is set.
func (e *Engine) render(ev bus.InboundEvent, text string, keyboard [][]bus.Button, editMessageID int) {
	e.bus.PublishOutbound(bus.OutboundMessage{
		Channel:       ev.Channel,
		ChatID:        ev.ChatID,
		Text:          text,
		Keyboard:      keyboard,
		EditMessageID: editMessageID,
	})
}
