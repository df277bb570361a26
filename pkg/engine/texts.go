package engine

import (
	"fmt"

	"github.com/raayon-bot/raayon/pkg/bus"
)

// Entry categories. A closed set: the menu, the category keyboard and the
// prompt templates all key off these labels.
const (
	CategoryBots   = "יצירת בוטים"
	CategoryGuides = "מדריכים"
)

// Callback payloads understood by the dispatcher.
const (
	cbPagePrefix     = "page_"
	cbPageInfo       = "page_info"
	cbCategoryPrefix = "category_"
	cbIdeaBots       = "main_idea_bots"
	cbIdeaGuides     = "main_idea_guides"
	cbMyIdeas        = "main_my_ideas"
	cbAddList        = "main_add_list"
	cbShowMenu       = "main_show_menu"
)

// User-facing strings. The bot speaks Hebrew.
const (
	textWelcome         = "שלום! אני מכונת הרעיונות שלך. תוכל לכתוב לי רעיון או להשתמש בתפריט:"
	textMenuTitle       = "תפריט ראשי:"
	textAskCategory     = "לאיזו קטגוריה לשייך את הרעיון?"
	textSomethingWrong  = "אופס, משהו השתבש. נסה שוב."
	textSaveFailed      = "לא הצלחתי לשמור את הרעיון. נסה לבחור קטגוריה שוב."
	textCancelled       = "הפעולה בוטלה."
	textListStart       = "מעולה. שלח לי את הרעיונות שלך, כל אחד בהודעה נפרדת.\nכשתסיים, שלח את הפקודה /done."
	textListCancelled   = "הוספת הרשימה בוטלה. חוזר לתפריט הראשי."
	textListEmpty       = "לא הזנת רעיונות. חוזר לתפריט הראשי."
	textNoEntriesAtAll  = "אין לך עדיין רשומות. כתוב לי משהו קודם!"
	textGenerateFailed  = "סליחה, יש לי בעיה טכנית עם יצירת הרעיונות. נסה שוב מאוחר יותר."
	textNoCategory      = "ללא קטגוריה"
	textEntrySavedFmt   = "✅ רשמתי! הרעיון נשמר בקטגוריית '%s'."
	textListAckFmt      = "👍 קיבלתי! (נאספו %d רעיונות). שלח את הבא, או /done לסיום."
	textListAskFmt      = "קיבלתי %d רעיונות. לאיזו קטגוריה לשייך אותם?"
	textListSavedFmt    = "✅ הצלחה! %d רעיונות חדשים נשמרו בקטגוריית '%s'."
	textThinkingFmt     = "🤔 חושב על רעיונות בשבילך בקטגוריית '%s'..."
	textIdeasFmt        = "💡 הנה הרעיונות שלך:\n\n%s"
	textNoEntriesFmt    = "אין לך עדיין רשומות בקטגוריית '%s'. כתוב לי כמה דברים קודם!"
	textDeletedFmt      = "🗑️ נמחקו %d רשומות."
	textHistoryHeadFmt  = "📚 הרעיונות שלך (עמוד %d מתוך %d):\n\n"
	textHistoryTotalFmt = "\n📊 סך הכל: %d רעיונות"
)

const (
	btnIdeaBots   = "🤖 בקש רעיון לבוט"
	btnIdeaGuides = "📖 בקש רעיון למדריך"
	btnMyIdeas    = "📚 הצג את הרעיונות שלי"
	btnAddList    = "➕ הוסף רשימת רעיונות"
	btnBackToMenu = "⬅️ חזור לתפריט"
	btnPrevPage   = "⬅️ הקודם"
	btnNextPage   = "הבא ➡️"
	btnPageFmt    = "עמוד %d מתוך %d"
)

func mainMenuKeyboard() [][]bus.Button {
	return [][]bus.Button{
		{{Label: btnIdeaBots, Data: cbIdeaBots}},
		{{Label: btnIdeaGuides, Data: cbIdeaGuides}},
		{{Label: btnMyIdeas, Data: cbMyIdeas}},
		{{Label: btnAddList, Data: cbAddList}},
	}
}

func backToMenuKeyboard() [][]bus.Button {
	return [][]bus.Button{
		{{Label: btnBackToMenu, Data: cbShowMenu}},
	}
}

func categoryKeyboard() [][]bus.Button {
	return [][]bus.Button{
		{{Label: CategoryBots, Data: cbCategoryPrefix + CategoryBots}},
		{{Label: CategoryGuides, Data: cbCategoryPrefix + CategoryGuides}},
	}
}

func paginationKeyboard(p Page) [][]bus.Button {
	var nav []bus.Button
	if p.HasPrev {
		nav = append(nav, bus.Button{Label: btnPrevPage, Data: fmt.Sprintf("%s%d", cbPagePrefix, p.Index-1)})
	}
	nav = append(nav, bus.Button{Label: fmt.Sprintf(btnPageFmt, p.Index+1, p.TotalPages), Data: cbPageInfo})
	if p.HasNext {
		nav = append(nav, bus.Button{Label: btnNextPage, Data: fmt.Sprintf("%s%d", cbPagePrefix, p.Index+1)})
	}

	return [][]bus.Button{
		nav,
		{{Label: btnBackToMenu, Data: cbShowMenu}},
	}
}

func validCategory(name string) bool {
	return name == CategoryBots || name == CategoryGuides
}
