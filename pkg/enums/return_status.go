package enums

import "fmt"

// ReturnStatus tracks a product return request.
type ReturnStatus string

const (
	ReturnStatusRequested ReturnStatus = "Requested"
	ReturnStatusApproved  ReturnStatus = "Approved"
	ReturnStatusRefunded  ReturnStatus = "Refunded"
	ReturnStatusRejected  ReturnStatus = "Rejected"
)

var validReturnStatuses = []ReturnStatus{
	ReturnStatusRequested,
	ReturnStatusApproved,
	ReturnStatusRefunded,
	ReturnStatusRejected,
}

// String implements fmt.Stringer.
func (r ReturnStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReturnStatus.
func (r ReturnStatus) IsValid() bool {
	for _, candidate := range validReturnStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsPending reports whether the return still awaits an admin decision.
func (r ReturnStatus) IsPending() bool {
	return r == ReturnStatusRequested
}

// ParseReturnStatus converts raw input into a ReturnStatus.
func ParseReturnStatus(value string) (ReturnStatus, error) {
	for _, candidate := range validReturnStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid return status %q", value)
}

// ReturnDecision is the admin's verdict on a pending return.
type ReturnDecision string

const (
	ReturnDecisionApproved ReturnDecision = "Approved"
	ReturnDecisionRejected ReturnDecision = "Rejected"
)

// IsValid reports whether the value is a known ReturnDecision.
func (d ReturnDecision) IsValid() bool {
	return d == ReturnDecisionApproved || d == ReturnDecisionRejected
}

// ParseReturnDecision converts raw input into a ReturnDecision.
func ParseReturnDecision(value string) (ReturnDecision, error) {
	d := ReturnDecision(value)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid return decision %q", value)
	}
	return d, nil
}
