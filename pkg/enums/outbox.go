package enums

// OutboxAggregateType names the entity an outbox event is about.
type OutboxAggregateType string

const (
	AggregateItem         OutboxAggregateType = "item"
	AggregateShoppingList OutboxAggregateType = "shopping_list"
)

func (a OutboxAggregateType) IsValid() bool {
	return a == AggregateItem || a == AggregateShoppingList
}

// OutboxEventType is the routing key of a domain event. Each type belongs to
// exactly one aggregate.
type OutboxEventType string

const (
	EventItemBecameCritical    OutboxEventType = "item.became_critical"
	EventShoppingListFinalized OutboxEventType = "shopping_list.finalized"
)

// Aggregate returns the aggregate the event is emitted for, or "" for an
// unknown type.
func (e OutboxEventType) Aggregate() OutboxAggregateType {
	switch e {
	case EventItemBecameCritical:
		return AggregateItem
	case EventShoppingListFinalized:
		return AggregateShoppingList
	}
	return ""
}

func (e OutboxEventType) IsValid() bool { return e.Aggregate() != "" }

// OutboxDLQErrorReason records why an event left the publish loop.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

func (r OutboxDLQErrorReason) IsValid() bool {
	return r == OutboxDLQReasonMaxAttempts || r == OutboxDLQReasonNonRetryable
}
