package enums

import "fmt"

// DealStatus is the lifecycle state of a catalog deal.
type DealStatus string

const (
	DealStatusActive   DealStatus = "active"
	DealStatusExpired  DealStatus = "expired"
	DealStatusDisabled DealStatus = "disabled"
)

var validDealStatuses = []DealStatus{
	DealStatusActive,
	DealStatusExpired,
	DealStatusDisabled,
}

// String implements fmt.Stringer.
func (s DealStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known deal status.
func (s DealStatus) IsValid() bool {
	for _, candidate := range validDealStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDealStatus converts the raw string to DealStatus.
func ParseDealStatus(value string) (DealStatus, error) {
	for _, candidate := range validDealStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deal status %q", value)
}
