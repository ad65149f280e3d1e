package grid

// Hooks receives the board's lifecycle signals.
//
// The signal set is small and typed so the contract between the
// loader, the filter, and the board stays checkable. Hooks are
// injected at construction with a no-op default; there is no ambient
// registry for unrelated modules to reach through.
type Hooks interface {
	// CardsAppended fires once per successful append with the number
	// of genuinely new cards (duplicates filtered by the store).
	CardsAppended(count int)

	// LayoutRequested fires at the start of every layout request with
	// the reason ("cards-appended", "resize", "category-selected", ...).
	// Requests dropped by the re-entrancy guard still fire this.
	LayoutRequested(reason string)
}

// NopHooks is the default Hooks implementation. Embed it to implement
// only the signals you care about.
type NopHooks struct{}

// CardsAppended does nothing.
func (NopHooks) CardsAppended(int) {}

// LayoutRequested does nothing.
func (NopHooks) LayoutRequested(string) {}

// HookFuncs adapts plain functions to Hooks. Nil fields are no-ops.
type HookFuncs struct {
	OnCardsAppended   func(count int)
	OnLayoutRequested func(reason string)
}

// CardsAppended calls OnCardsAppended when set.
func (h HookFuncs) CardsAppended(count int) {
	if h.OnCardsAppended != nil {
		h.OnCardsAppended(count)
	}
}

// LayoutRequested calls OnLayoutRequested when set.
func (h HookFuncs) LayoutRequested(reason string) {
	if h.OnLayoutRequested != nil {
		h.OnLayoutRequested(reason)
	}
}

var (
	_ Hooks = NopHooks{}
	_ Hooks = HookFuncs{}
)
