package engine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/raayon-bot/raayon/pkg/bus"
	"github.com/raayon-bot/raayon/pkg/store"
)

const displayContentLimit = 60

// showHistory renders one page of the user's entries, newest first, editing
// the triggering message in place when the event carries one.
func (e *Engine) showHistory(ctx context.Context, ev bus.InboundEvent, page int) {
	total, err := e.store.Count(ctx, ev.UserID)
	if err != nil {
		e.log.Error("count entries failed", zap.String("user", ev.UserID), zap.Error(err))
		e.render(ev, textSomethingWrong, backToMenuKeyboard(), ev.MessageID)
		return
	}

	if total == 0 {
		e.render(ev, textNoEntriesAtAll, backToMenuKeyboard(), ev.MessageID)
		return
	}

	p := Paginate(total, page, e.opts.PageSize)

	entries, err := e.store.QueryPage(ctx, ev.UserID, p.Index, p.Size)
	if err != nil {
		e.log.Error("query entries page failed",
			zap.String("user", ev.UserID),
			zap.Int("page", p.Index),
			zap.Error(err))
		e.render(ev, textSomethingWrong, backToMenuKeyboard(), ev.MessageID)
		return
	}

	e.render(ev, renderHistoryPage(p, entries), paginationKeyboard(p), ev.MessageID)
}

func renderHistoryPage(p Page, entries []*store.Entry) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(textHistoryHeadFmt, p.Index+1, p.TotalPages))

	for i, entry := range entries {
		category := entry.Category
		if category == "" {
			category = textNoCategory
		}
		sb.WriteString(fmt.Sprintf("%d. %s\n", p.Offset+i+1, truncateContent(entry.Content)))
		sb.WriteString(fmt.Sprintf("קטגוריה: %s | תאריך: %s\n\n", category, entry.CreatedAt.Format("02/01 15:04")))
	}

	sb.WriteString(fmt.Sprintf(textHistoryTotalFmt, p.TotalCount))
	return sb.String()
}

// truncateContent shortens long notes for list display. Rune-based: notes
// are Hebrew and a byte cut would split a character.
func truncateContent(content string) string {
	runes := []rune(content)
	if len(runes) <= displayContentLimit {
		return content
	}
	return string(runes[:displayContentLimit]) + "..."
}
