package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type_enum enum in Postgres.
type OutboxAggregateType string

const (
	AggregateTransfer   OutboxAggregateType = "transfer"
	AggregateStockEntry OutboxAggregateType = "stock_entry"
	AggregateItem       OutboxAggregateType = "item"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateTransfer,
	AggregateStockEntry,
	AggregateItem,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type_enum enum in Postgres.
type OutboxEventType string

const (
	EventTransferRequested OutboxEventType = "transfer_requested"
	EventTransferAccepted  OutboxEventType = "transfer_accepted"
	EventTransferRejected  OutboxEventType = "transfer_rejected"
	EventStockAdjusted     OutboxEventType = "stock_adjusted"
	EventStockBelowMinimum OutboxEventType = "stock_below_minimum"
	EventItemDeactivated   OutboxEventType = "item_deactivated"
)

var validOutboxEventTypes = []OutboxEventType{
	EventTransferRequested,
	EventTransferAccepted,
	EventTransferRejected,
	EventStockAdjusted,
	EventStockBelowMinimum,
	EventItemDeactivated,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
