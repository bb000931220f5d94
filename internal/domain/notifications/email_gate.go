package notifications

import (
	"context"
	"log/slog"

	"notify/internal/domain/accounts"
)

// EmailGate resolves a recipient's email preference for an activity's
// category. Categories with no stored preference fall back to defaults.
type EmailGate struct {
	store    EmailPreferenceStore
	defaults map[string]bool
}

func NewEmailGate(store EmailPreferenceStore, defaults map[string]bool) *EmailGate {
	if defaults == nil {
		defaults = DefaultEmailCategories()
	}
	return &EmailGate{store: store, defaults: defaults}
}

func (g *EmailGate) Default(category string) bool {
	return g.defaults[category]
}

func (g *EmailGate) Evaluate(ctx context.Context, recipient accounts.Account, activity Activity) EmailDecision {
	category := activity.Kind.Category()
	decision := EmailDecision{Category: category}

	if g.store == nil {
		decision.Allow = g.Default(category)
		return decision
	}

	enabled, found, err := g.store.EmailPreference(ctx, recipient.ID, category)
	if err != nil {
		slog.Warn("email preference lookup failed", "accountId", recipient.ID, "category", category, "err", err)
		return decision
	}
	if !found {
		enabled = g.Default(category)
	}
	decision.Allow = enabled
	return decision
}

// Resolved merges stored preferences over the defaults for every category.
func (g *EmailGate) Resolved(stored map[string]bool) map[string]bool {
	out := make(map[string]bool, len(g.defaults))
	for _, category := range Categories() {
		out[category] = g.Default(category)
	}
	for category, enabled := range stored {
		if KnownCategory(category) {
			out[category] = enabled
		}
	}
	return out
}
