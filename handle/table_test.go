package handle

import (
	"sync"
	"testing"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnHandleEvent(e Event) {
	o.events = append(o.events, e)
}

type destroyCounter struct {
	n int
}

func (d *destroyCounter) Destroy() { d.n++ }

func TestTable_Basic(t *testing.T) {
	table := NewTable()

	h := table.Insert(1, "test")
	if h == 0 {
		t.Fatal("Expected non-zero handle")
	}

	val, ok := table.Get(h)
	if !ok || val != "test" {
		t.Fatalf("Get returned %v, %v", val, ok)
	}

	if _, ok := table.GetTyped(h, 1); !ok {
		t.Fatal("GetTyped with correct type failed")
	}
	if _, ok := table.GetTyped(h, 2); ok {
		t.Fatal("GetTyped with wrong type should fail")
	}

	id, ok := table.TypeID(h)
	if !ok || id != 1 {
		t.Fatalf("TypeID returned %d, %v", id, ok)
	}

	if _, ok := table.Remove(h); !ok {
		t.Fatal("Remove failed")
	}
	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Remove")
	}
	if _, ok := table.Get(h); ok {
		t.Fatal("Get after Remove should fail")
	}
}

func TestTable_ZeroHandleInvalid(t *testing.T) {
	table := NewTable()
	if _, ok := table.Get(0); ok {
		t.Fatal("handle 0 must never resolve")
	}
	if _, ok := table.Remove(0); ok {
		t.Fatal("Remove(0) should fail")
	}
}

func TestTable_DestroyRunsOnce(t *testing.T) {
	table := NewTable()
	d := &destroyCounter{}

	h := table.Insert(1, d)
	if _, ok := table.Remove(h); !ok {
		t.Fatal("first Remove failed")
	}
	if _, ok := table.Remove(h); ok {
		t.Fatal("second Remove should fail")
	}
	if d.n != 1 {
		t.Fatalf("Destroy ran %d times, want 1", d.n)
	}
}

func TestTable_SharedRefCount(t *testing.T) {
	table := NewTable()
	d := &destroyCounter{}

	h := table.InsertShared(1, d)
	if !table.Retain(h) {
		t.Fatal("Retain failed")
	}

	// First release only drops a reference.
	if _, ok := table.Remove(h); !ok {
		t.Fatal("first Remove failed")
	}
	if d.n != 0 {
		t.Fatal("value destroyed while references remain")
	}
	if _, ok := table.Get(h); !ok {
		t.Fatal("handle should stay live after partial release")
	}

	// Last release destroys.
	if _, ok := table.Remove(h); !ok {
		t.Fatal("second Remove failed")
	}
	if d.n != 1 {
		t.Fatalf("Destroy ran %d times, want 1", d.n)
	}
}

func TestTable_RetainOwnedFails(t *testing.T) {
	table := NewTable()
	h := table.Insert(1, "owned")
	if table.Retain(h) {
		t.Fatal("Retain on an owned entry should fail")
	}
}

func TestTable_BorrowBlocksRemove(t *testing.T) {
	table := NewTable()
	h := table.Insert(1, "v")

	if !table.Borrow(h) {
		t.Fatal("Borrow failed")
	}
	if _, ok := table.Remove(h); ok {
		t.Fatal("Remove should fail with outstanding borrow")
	}
	if !table.Return(h) {
		t.Fatal("Return failed")
	}
	if _, ok := table.Remove(h); !ok {
		t.Fatal("Remove after Return failed")
	}
}

func TestTable_SlotReuse(t *testing.T) {
	table := NewTable()
	h1 := table.Insert(1, "a")
	table.Remove(h1)
	h2 := table.Insert(1, "b")
	if h2 != h1 {
		t.Fatalf("freed slot not reused: got %d, want %d", h2, h1)
	}
	if v, _ := table.Get(h2); v != "b" {
		t.Fatalf("reused slot holds %v", v)
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable()
	obs := &testObserver{}
	table.Subscribe(obs)

	h := table.Insert(7, "v")
	table.Borrow(h)
	table.Return(h)
	table.Remove(h)

	want := []EventType{EventCreated, EventBorrowed, EventReturned, EventDestroyed}
	if len(obs.events) != len(want) {
		t.Fatalf("got %d events, want %d", len(obs.events), len(want))
	}
	for i, e := range obs.events {
		if e.Type != want[i] {
			t.Errorf("event %d: got %v, want %v", i, e.Type, want[i])
		}
		if e.Handle != h || e.TypeID != 7 {
			t.Errorf("event %d carries wrong identity: %+v", i, e)
		}
	}

	table.Unsubscribe(obs)
	table.Insert(7, "w")
	if len(obs.events) != len(want) {
		t.Fatal("unsubscribed observer still notified")
	}
}

func TestTable_Close(t *testing.T) {
	table := NewTable()
	d := &destroyCounter{}
	table.InsertShared(1, d)
	table.Retain(table.Insert(2, "x")) // no-op retain on owned

	if err := table.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if d.n != 1 {
		t.Fatal("Close should destroy shared entries regardless of refs")
	}
	if h := table.Insert(1, "y"); h != 0 {
		t.Fatal("Insert after Close should fail")
	}
	if err := table.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestTable_ConcurrentDistinctHandles(t *testing.T) {
	table := NewTable()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h := table.Insert(uint32(n), n)
				if h == 0 {
					t.Error("Insert failed")
					return
				}
				if !table.Borrow(h) {
					t.Error("Borrow failed")
					return
				}
				if _, ok := table.Get(h); !ok {
					t.Error("Get failed")
					return
				}
				table.Return(h)
				if _, ok := table.Remove(h); !ok {
					t.Error("Remove failed")
					return
				}
			}
		}(i)
	}
	wg.Wait()

	if table.Len() != 0 {
		t.Fatalf("leaked %d handles", table.Len())
	}
}
