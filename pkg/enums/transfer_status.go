package enums

import "fmt"

// TransferStatus maps to the transfer_status_enum enum in Postgres.
type TransferStatus string

const (
	TransferStatusPending  TransferStatus = "pending"
	TransferStatusAccepted TransferStatus = "accepted"
	TransferStatusRejected TransferStatus = "rejected"
)

var validTransferStatuses = []TransferStatus{
	TransferStatusPending,
	TransferStatusAccepted,
	TransferStatusRejected,
}

// IsValid reports whether the value matches the canonical transfer status enum.
func (s TransferStatus) IsValid() bool {
	for _, candidate := range validTransferStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status allows no further transitions.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusAccepted || s == TransferStatusRejected
}

// CanTransitionTo reports whether the one-way pending->accepted/rejected
// transition is allowed.
func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	return s == TransferStatusPending && next.IsTerminal()
}

// ParseTransferStatus converts raw input into TransferStatus.
func ParseTransferStatus(value string) (TransferStatus, error) {
	for _, candidate := range validTransferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer status %q", value)
}
