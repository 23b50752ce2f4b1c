package handle

import (
	"errors"
	"sync"
)

var (
	ErrClosed            = errors.New("handle table closed")
	ErrOutstandingBorrow = errors.New("cannot destroy handle with outstanding borrows")
)

type entry struct {
	value   any
	typeID  uint32
	borrows uint32
	refs    uint32 // >0 for shared entries, 0 for exclusively owned
	valid   bool
}

// Table maps handles to native objects. Owned entries have exactly one
// owner and die on the first Remove; shared entries (factory results with
// shared ownership) carry a reference count and die when it reaches zero.
//
// The table itself is safe for concurrent use. It provides no
// synchronization for the stored objects.
type Table struct {
	entries   []entry
	freeList  []Handle
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

// Insert stores an exclusively owned value and returns its handle.
// Returns 0 if the table is closed.
func (t *Table) Insert(typeID uint32, value any) Handle {
	h := t.insert(entry{typeID: typeID, value: value, valid: true})
	if h != 0 {
		t.notify(Event{Type: EventCreated, Handle: h, TypeID: typeID, Value: value})
	}
	return h
}

// InsertShared stores a value with shared ownership and one initial
// reference. Retain adds owners; Remove releases one.
func (t *Table) InsertShared(typeID uint32, value any) Handle {
	h := t.insert(entry{typeID: typeID, value: value, refs: 1, valid: true})
	if h != 0 {
		t.notify(Event{Type: EventCreated, Handle: h, TypeID: typeID, Value: value})
	}
	return h
}

func (t *Table) insert(e entry) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0
	}
	if n := len(t.freeList); n > 0 {
		h := t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[h-1] = e
		return h
	}
	t.entries = append(t.entries, e)
	return Handle(len(t.entries))
}

// Get retrieves a value by handle.
func (t *Table) Get(h Handle) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.lookup(h)
	if !ok {
		return nil, false
	}
	return e.value, true
}

// GetTyped retrieves a value only if it has the expected type ID.
func (t *Table) GetTyped(h Handle, typeID uint32) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.lookup(h)
	if !ok || e.typeID != typeID {
		return nil, false
	}
	return e.value, true
}

// TypeID returns the type ID stored for a handle.
func (t *Table) TypeID(h Handle) (uint32, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.lookup(h)
	if !ok {
		return 0, false
	}
	return e.typeID, true
}

// Retain adds a reference to a shared handle. It reports false for owned
// entries and invalid handles.
func (t *Table) Retain(h Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.lookupMut(h)
	if !ok || e.refs == 0 {
		return false
	}
	e.refs++
	return true
}

// Borrow marks a handle as in use for the duration of a call, blocking
// Remove until the matching Return.
func (t *Table) Borrow(h Handle) bool {
	t.mu.Lock()
	e, ok := t.lookupMut(h)
	if !ok {
		t.mu.Unlock()
		return false
	}
	e.borrows++
	val := e.value
	typeID := e.typeID
	t.mu.Unlock()

	t.notify(Event{Type: EventBorrowed, Handle: h, TypeID: typeID, Value: val})
	return true
}

// Return releases one borrow taken with Borrow.
func (t *Table) Return(h Handle) bool {
	t.mu.Lock()
	e, ok := t.lookupMut(h)
	if !ok || e.borrows == 0 {
		t.mu.Unlock()
		return false
	}
	e.borrows--
	val := e.value
	typeID := e.typeID
	t.mu.Unlock()

	t.notify(Event{Type: EventReturned, Handle: h, TypeID: typeID, Value: val})
	return true
}

// Remove releases one ownership of the handle. Owned entries are destroyed
// immediately; shared entries are destroyed when the last reference goes.
// The stored value's Destroy method runs when the entry actually dies.
// Remove reports false for invalid handles and for entries with
// outstanding borrows.
func (t *Table) Remove(h Handle) (any, bool) {
	t.mu.Lock()
	e, ok := t.lookupMut(h)
	if !ok || e.borrows > 0 {
		t.mu.Unlock()
		return nil, false
	}

	if e.refs > 1 {
		e.refs--
		val := e.value
		t.mu.Unlock()
		return val, true
	}

	value := e.value
	typeID := e.typeID
	e.valid = false
	e.value = nil
	e.refs = 0
	t.freeList = append(t.freeList, h)
	t.mu.Unlock()

	if d, ok := value.(Destroyer); ok {
		d.Destroy()
	}
	t.notify(Event{Type: EventDestroyed, Handle: h, TypeID: typeID, Value: value})
	return value, true
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for i := range t.entries {
		if t.entries[i].valid {
			n++
		}
	}
	return n
}

// Each iterates over live handles.
func (t *Table) Each(fn func(Handle, uint32, any) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := range t.entries {
		if t.entries[i].valid {
			if !fn(Handle(i+1), t.entries[i].typeID, t.entries[i].value) {
				return
			}
		}
	}
}

// Clear destroys all live handles regardless of reference counts.
func (t *Table) Clear() {
	var handles []Handle
	t.Each(func(h Handle, _ uint32, _ any) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		t.mu.Lock()
		if e, ok := t.lookupMut(h); ok {
			e.refs = 0
			e.borrows = 0
		}
		t.mu.Unlock()
		t.Remove(h)
	}
}

// Close destroys everything and rejects further inserts.
func (t *Table) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	t.Clear()

	t.mu.Lock()
	t.entries = nil
	t.freeList = nil
	t.mu.Unlock()
	return nil
}

// Subscribe registers a lifecycle observer.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes a previously registered observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnHandleEvent(e)
	}
}

// lookup returns the entry for a handle; caller holds at least a read lock.
func (t *Table) lookup(h Handle) (*entry, bool) {
	if h == 0 || int(h) > len(t.entries) {
		return nil, false
	}
	e := &t.entries[h-1]
	if !e.valid {
		return nil, false
	}
	return e, true
}

func (t *Table) lookupMut(h Handle) (*entry, bool) {
	return t.lookup(h)
}
