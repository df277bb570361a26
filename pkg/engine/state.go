package engine

import (
	"sync"
)

// State is a user's position in a capture flow.
type State int

const (
	StateIdle State = iota
	StateAwaitingCategory
	StateAwaitingItems
	StateAwaitingCategoryForList
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingCategory:
		return "awaiting_category"
	case StateAwaitingItems:
		return "awaiting_items"
	case StateAwaitingCategoryForList:
		return "awaiting_category_for_list"
	default:
		return "unknown"
	}
}

// userState holds one user's dialog state plus scratch data. The mutex
// serializes all transitions for that user; different users never share a
// lock. Scratch data lives only for the duration of a flow and is cleared
// on every terminal transition.
type userState struct {
	mu      sync.Mutex
	state   State
	pending string   // single-entry flow: content awaiting a category
	items   []string // batch flow: collected notes awaiting /done + category
}

func (st *userState) reset() {
	st.state = StateIdle
	st.pending = ""
	st.items = nil
}

func (e *Engine) userState(userID string) *userState {
	v, _ := e.users.LoadOrStore(userID, &userState{})
	return v.(*userState)
}
