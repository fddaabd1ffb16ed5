package orders

import (
	"fmt"
	"strings"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusPaid       Status = "PAID"
	StatusCancelled  Status = "CANCELLED"
)

// allowedTransitions holds the manual workflow edges. PAID is absent on
// purpose: it is reachable only through payment confirmation, never through
// the status endpoint.
var allowedTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusPaid:       {},
	StatusCancelled:  {},
}

// ParseStatus maps a request string onto a known status value.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusPaid, StatusCancelled:
		return status, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// CanTransitionTo reports whether the manual workflow allows moving from s
// to target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range allowedTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Payable reports whether payment confirmation may move this status to PAID.
func (s Status) Payable() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered:
		return true
	}
	return false
}
