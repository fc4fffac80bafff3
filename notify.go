package macrolog

// NotifyCategory names the kind of user-facing event a mutation or sync
// produced. The store only selects a category; all locale text and
// presentation live in the notification layer.
type NotifyCategory string

const (
	NotifyMeal     NotifyCategory = "meal"
	NotifyWater    NotifyCategory = "water"
	NotifyWeight   NotifyCategory = "weight"
	NotifyGoals    NotifyCategory = "goals"
	NotifyMood     NotifyCategory = "mood"
	NotifyTemplate NotifyCategory = "template"
	NotifySync     NotifyCategory = "sync"
)

// NotifyOutcome qualifies the event within its category.
type NotifyOutcome string

const (
	OutcomeAdded     NotifyOutcome = "added"
	OutcomeUpdated   NotifyOutcome = "updated"
	OutcomeRemoved   NotifyOutcome = "removed"
	OutcomeInvalid   NotifyOutcome = "invalid"
	OutcomeSynced    NotifyOutcome = "synced"
	OutcomeUpToDate  NotifyOutcome = "up_to_date"
	OutcomeOffline   NotifyOutcome = "offline"
	OutcomeThrottled NotifyOutcome = "throttled"
	OutcomeAuth      NotifyOutcome = "auth_required"
	OutcomeFailed    NotifyOutcome = "failed"
)

// Notifier receives user-facing events from the client. Implementations must
// not block: notifications fire inside mutation handlers.
type Notifier interface {
	Notify(category NotifyCategory, outcome NotifyOutcome, params map[string]any)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(NotifyCategory, NotifyOutcome, map[string]any) {}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(category NotifyCategory, outcome NotifyOutcome, params map[string]any)

func (f NotifierFunc) Notify(category NotifyCategory, outcome NotifyOutcome, params map[string]any) {
	f(category, outcome, params)
}
