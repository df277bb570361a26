package engine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/raayon-bot/raayon/pkg/bus"
	"github.com/raayon-bot/raayon/pkg/model"
	"github.com/raayon-bot/raayon/pkg/store"
)

const systemPromptFmt = `אתה מומחה בניתוח וחיקוי סגנון כתיבה אישי. המשימה שלך היא לנתח בעמקות את סגנון הכתיבה של המשתמש בתחום '%s' - איך הוא כותב, איזה מילים הוא בוחר, איזה רמת פירוט, איזה נושאים ספציפיים מעניינים אותו. לאחר מכן, ייצר רעיונות חדשים שמרגישים כאילו המשתמש בעצמו כתב אותם. התמקד בייחודיות שלו ואל תהיה גנרי. חשוב: כשמדובר ברעיונות לבוטים, התמקד דווקא בבוטים טכנולוגיים עם נושא פרודוקטיביות, ולא בנושאים של ניהול סדר יום, תזכורות או משימות יומיומיות.`

const userPromptFmt = `על בסיס כל הרעיונות שלי בקטגוריית '%s':

%s

אנא נתח בעמקות את הסגנון, הטון, רמת הפירוט, סוג המילים והביטויים שאני משתמש בהם, ואת הנושאים הספציפיים שמעניינים אותי.

לאחר מכן, הצע 15 רעיונות חדשים שמחקים בדיוק את הסגנון שלי - כאילו אני בעצמי כתבתי אותם.

חשוב מאוד:
- היצמד לסגנון הכתיבה שלי בדיוק - אותו טון, אותה רמת פירוט, אותו סוג מילים
- שמור על אותם נושאים ותחומי עניין שאני כותב עליהם
- הרעיונות צריכים להרגיש טבעיים וכאילו הם באים ממני
- אל תהיה גנרי - היה ספציפי כמו שאני

כתוב 15 רעיונות בעברית, כל אחד בשורה נפרדת עם מספר.`

// ideaAction returns the menu handler for one idea category: show a
// "thinking" placeholder, run the pipeline, then replace the placeholder
// with the result.
func (e *Engine) ideaAction(category string) handlerFunc {
	return func(ctx context.Context, ev bus.InboundEvent, st *userState) {
		e.render(ev, fmt.Sprintf(textThinkingFmt, category), nil, ev.MessageID)
		text, ok := e.GenerateIdeas(ctx, ev.UserID, category)
		if ok {
			text = fmt.Sprintf(textIdeasFmt, text)
		}
		e.render(ev, text, backToMenuKeyboard(), ev.MessageID)
	}
}

// GenerateIdeas turns a user's stored history for a category into fresh
// suggestions and reports whether the backend produced them. With no history
// it answers directly without touching the backend; any backend or store
// failure degrades to a fixed apology. Stored data is never mutated.
func (e *Engine) GenerateIdeas(ctx context.Context, userID, category string) (string, bool) {
	entries, err := e.store.Query(ctx, userID, category, e.opts.HistoryLimit)
	if err != nil {
		e.log.Error("query history failed",
			zap.String("user", userID),
			zap.String("category", category),
			zap.Error(err))
		return textGenerateFailed, false
	}

	if len(entries) == 0 {
		return fmt.Sprintf(textNoEntriesFmt, category), false
	}

	prompt := buildPrompt(category, entries)

	callCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	resp, err := e.provider.Send(callCtx, &model.Request{
		Messages: []model.Message{
			{Role: "system", Content: fmt.Sprintf(systemPromptFmt, category)},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   e.opts.MaxTokens,
		Temperature: e.opts.Temperature,
	})
	if err != nil {
		e.log.Error("generate ideas failed",
			zap.String("user", userID),
			zap.String("category", category),
			zap.Int("entries", len(entries)),
			zap.Error(err))
		return textGenerateFailed, false
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		e.log.Error("generate ideas returned empty response",
			zap.String("user", userID),
			zap.String("category", category))
		return textGenerateFailed, false
	}

	return text, true
}

// buildPrompt embeds the entry contents, newest first, in the instructional
// template. Stable for a given history.
func buildPrompt(category string, entries []*store.Entry) string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, "- "+entry.Content)
	}
	return fmt.Sprintf(userPromptFmt, category, strings.Join(lines, "\n"))
}
