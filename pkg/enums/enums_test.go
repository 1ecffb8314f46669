package enums

import "testing"

func TestParseDealStatus(t *testing.T) {
	for _, raw := range []string{"active", "expired", "disabled"} {
		status, err := ParseDealStatus(raw)
		if err != nil {
			t.Fatalf("ParseDealStatus(%q) returned error: %v", raw, err)
		}
		if !status.IsValid() || status.String() != raw {
			t.Fatalf("unexpected status %q for %q", status, raw)
		}
	}
	if _, err := ParseDealStatus("archived"); err == nil {
		t.Fatal("expected unknown status to fail")
	}
	if DealStatus("ACTIVE").IsValid() {
		t.Fatal("status parsing should be case sensitive")
	}
}

func TestParseAnalyticsAction(t *testing.T) {
	action, err := ParseAnalyticsAction("wishlist_remove")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action != AnalyticsActionWishlistRemove {
		t.Fatalf("unexpected action %q", action)
	}
	if _, err := ParseAnalyticsAction("deal_view"); err == nil {
		t.Fatal("expected unknown action to fail")
	}
}
