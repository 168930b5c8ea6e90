package booking

import "github.com/petatwork/service-booking/internal/pkg/auth"

// Status represents a booking's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRefused   Status = "refused"
	StatusCancelled Status = "cancelled"
	StatusPaid      Status = "paid"
)

// validTransitions defines the booking state machine. Paid is a terminal
// state here; the refund flow moves paid bookings to cancelled outside this
// table.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusAccepted, StatusRefused, StatusCancelled},
	StatusAccepted:  {StatusCancelled, StatusPaid},
	StatusRefused:   {},
	StatusCancelled: {},
	StatusPaid:      {},
}

// IsValid reports whether the status is a recognized value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRefused, StatusCancelled, StatusPaid:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine allows moving from s to
// target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// IsActive reports whether a booking in this status still reserves the
// animal's dates. Refused and cancelled bookings do not.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusPaid
}

// RoleCanSet reports whether the given role may request a transition to the
// target status through the status-update operation. Counterparties (sitters
// and companies) decide on requests; owners may withdraw their own requests,
// and may also accept on the counterparty's behalf when ownerAccept mode is
// enabled. Admins may set anything the machine allows. Paid is excluded for
// every role; settlement is its only entry point.
func RoleCanSet(role auth.Role, target Status, ownerAccept bool) bool {
	if target == StatusPaid {
		return false
	}
	switch role {
	case auth.RoleAdmin:
		return true
	case auth.RoleSitter, auth.RoleCompany:
		return target == StatusAccepted || target == StatusRefused || target == StatusCancelled
	case auth.RoleOwner:
		if target == StatusCancelled {
			return true
		}
		return ownerAccept && target == StatusAccepted
	}
	return false
}
