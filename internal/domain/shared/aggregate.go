package shared

// BaseAggregateRoot carries the optimistic version of an aggregate and the
// events it raised since it was loaded. Repositories accept a write only when
// the row still holds the version the aggregate was loaded at.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `json:"version"`
	stored  int
	pending []DomainEvent
}

// NewBaseAggregateRoot starts a fresh aggregate at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// RestoreAggregateRoot rebuilds a root read back from storage at version
func RestoreAggregateRoot(entity BaseEntity, version int) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: entity, Version: version, stored: version}
}

// StoredVersion returns the version last read or written; zero for an
// aggregate that was never saved
func (a *BaseAggregateRoot) StoredVersion() int {
	return a.stored
}

// MarkStored records that the current version reached storage
func (a *BaseAggregateRoot) MarkStored() {
	a.stored = a.Version
}

// Bump records a mutation
func (a *BaseAggregateRoot) Bump() {
	a.Touch()
	a.Version++
}

// Raise queues an event for publication after the aggregate is saved
func (a *BaseAggregateRoot) Raise(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// Events returns the queued events without clearing them
func (a *BaseAggregateRoot) Events() []DomainEvent {
	return a.pending
}

// PullEvents returns the queued events and clears the queue
func (a *BaseAggregateRoot) PullEvents() []DomainEvent {
	events := a.pending
	a.pending = nil
	return events
}

// ClearEvents drops the queued events
func (a *BaseAggregateRoot) ClearEvents() {
	a.pending = nil
}
