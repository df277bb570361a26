package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/raayon-bot/raayon/pkg/bus"
)

// handleStartList enters the batch flow. Starting it discards whatever flow
// was active; two flows are never merged.
func (e *Engine) handleStartList(ctx context.Context, ev bus.InboundEvent, st *userState) {
	st.reset()
	st.state = StateAwaitingItems
	st.items = []string{}
	e.render(ev, textListStart, nil, ev.MessageID)
}

// handleDone closes item collection. Outside the batch flow it is a no-op.
func (e *Engine) handleDone(ctx context.Context, ev bus.InboundEvent, st *userState) {
	if st.state != StateAwaitingItems {
		return
	}

	if len(st.items) == 0 {
		st.reset()
		e.reply(ev, textListEmpty, mainMenuKeyboard())
		return
	}

	st.state = StateAwaitingCategoryForList
	e.reply(ev, fmt.Sprintf(textListAskFmt, len(st.items)), categoryKeyboard())
}

// handleCategoryChoice completes whichever flow is awaiting a category.
// A choice that arrives with no pending scratch (state already cleared, or
// a stale button press) is reported and the machine returns to idle.
func (e *Engine) handleCategoryChoice(ctx context.Context, ev bus.InboundEvent, st *userState, category string) {
	if !validCategory(category) {
		return
	}

	switch st.state {
	case StateAwaitingCategory:
		e.completeSingle(ctx, ev, st, category)
	case StateAwaitingCategoryForList:
		e.completeList(ctx, ev, st, category)
	default:
		st.reset()
		e.render(ev, textSomethingWrong, backToMenuKeyboard(), ev.MessageID)
	}
}

func (e *Engine) completeSingle(ctx context.Context, ev bus.InboundEvent, st *userState, category string) {
	if st.pending == "" {
		st.reset()
		e.render(ev, textSomethingWrong, backToMenuKeyboard(), ev.MessageID)
		return
	}

	if _, err := e.store.Save(ctx, ev.UserID, st.pending, category); err != nil {
		// Keep the pending content and the state so the user can pick a
		// category again instead of losing the note.
		e.log.Error("save entry failed",
			zap.String("user", ev.UserID),
			zap.String("category", category),
			zap.Error(err))
		e.render(ev, textSaveFailed, categoryKeyboard(), ev.MessageID)
		return
	}

	st.reset()
	e.render(ev, fmt.Sprintf(textEntrySavedFmt, category), mainMenuKeyboard(), ev.MessageID)
}

func (e *Engine) completeList(ctx context.Context, ev bus.InboundEvent, st *userState, category string) {
	saved := 0
	for _, item := range st.items {
		if _, err := e.store.Save(ctx, ev.UserID, item, category); err != nil {
			// Already-saved items stay saved (each save is atomic); keep the
			// unsaved remainder in scratch and stay here so a retry only
			// persists what is left.
			st.items = st.items[saved:]
			e.log.Error("save list entry failed",
				zap.String("user", ev.UserID),
				zap.String("category", category),
				zap.Int("saved", saved),
				zap.Int("remaining", len(st.items)),
				zap.Error(err))
			e.render(ev, textSaveFailed, categoryKeyboard(), ev.MessageID)
			return
		}
		saved++
	}

	st.reset()
	e.render(ev, fmt.Sprintf(textListSavedFmt, saved, category), mainMenuKeyboard(), ev.MessageID)
}
