package enums

import "fmt"

// AnalyticsAction is the action recorded in analytics_events.
type AnalyticsAction string

const (
	AnalyticsActionWishlistAdd    AnalyticsAction = "wishlist_add"
	AnalyticsActionWishlistRemove AnalyticsAction = "wishlist_remove"
)

var validAnalyticsActions = []AnalyticsAction{
	AnalyticsActionWishlistAdd,
	AnalyticsActionWishlistRemove,
}

// String implements fmt.Stringer.
func (a AnalyticsAction) String() string {
	return string(a)
}

// IsValid reports whether the value matches a recorded analytics action.
func (a AnalyticsAction) IsValid() bool {
	for _, candidate := range validAnalyticsActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAnalyticsAction converts the raw string to AnalyticsAction.
func ParseAnalyticsAction(value string) (AnalyticsAction, error) {
	for _, candidate := range validAnalyticsActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid analytics action %q", value)
}
