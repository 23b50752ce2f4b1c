package handle

// Handle is an opaque reference to a native object held by a Table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// Destroyer is optionally implemented by stored values that need cleanup
// when their last owner releases them.
type Destroyer interface {
	Destroy()
}

// EventType identifies a lifecycle event.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDestroyed
	EventBorrowed
	EventReturned
)

// Event describes a handle lifecycle transition.
type Event struct {
	Value  any
	Handle Handle
	TypeID uint32
	Type   EventType
}

// Observer receives lifecycle events. Used by leak checks and the
// inspector CLI; not part of the boundary contract.
type Observer interface {
	OnHandleEvent(Event)
}
