package meshing

import "testing"

func TestHarvestAppliesInPushOrder(t *testing.T) {
	q := NewUpdateQueue(0)
	q.Push(PendingUpdate{ClusterY: 1})
	q.Push(PendingUpdate{ClusterY: 2})

	var got []int
	res := q.Harvest(func(u PendingUpdate) { got = append(got, u.ClusterY) })
	if !res.Locked || res.Applied != 2 || res.Pending != 2 {
		t.Fatalf("harvest: got %+v, want locked with 2 applied", res)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("order: got %v, want [1 2]", got)
	}
	if q.Len() != 0 {
		t.Fatalf("queue length after drain: got %d, want 0", q.Len())
	}
}

func TestHarvestDebounce(t *testing.T) {
	q := NewUpdateQueue(2)
	q.Push(PendingUpdate{})

	applied := 0
	apply := func(PendingUpdate) { applied++ }
	for frame := 1; frame <= 2; frame++ {
		if res := q.Harvest(apply); res.Applied != 0 || res.Pending != 1 {
			t.Fatalf("harvest %d: got %+v, want held", frame, res)
		}
	}
	if res := q.Harvest(apply); res.Applied != 1 {
		t.Fatalf("harvest 3: got %+v, want 1 applied", res)
	}
	if applied != 1 {
		t.Fatalf("applied: got %d, want 1", applied)
	}
}

func TestOldestUpdateGatesTheQueue(t *testing.T) {
	q := NewUpdateQueue(1)
	q.Push(PendingUpdate{ClusterY: 1})
	q.Harvest(func(PendingUpdate) { t.Fatal("applied too early") })
	q.Push(PendingUpdate{ClusterY: 2}) // ready one frame later than the first

	var got []int
	q.Harvest(func(u PendingUpdate) { got = append(got, u.ClusterY) })
	if len(got) != 2 {
		t.Fatalf("applied: got %v, want both updates once the oldest is ready", got)
	}
}

func TestHarvestSkipsWhenProducerHoldsLock(t *testing.T) {
	q := NewUpdateQueue(1)
	q.Push(PendingUpdate{})

	q.mu.Lock()
	res := q.Harvest(func(PendingUpdate) { t.Fatal("applied while locked") })
	q.mu.Unlock()
	if res.Locked {
		t.Fatal("harvest should not have taken the lock")
	}
	// a skipped harvest does not count toward the debounce
	if q.Frame() != 0 {
		t.Fatalf("frame: got %d, want 0", q.Frame())
	}
	if res := q.Harvest(func(PendingUpdate) {}); res.Applied != 0 {
		t.Fatalf("first locked harvest: got %+v, want held", res)
	}
	if res := q.Harvest(func(PendingUpdate) {}); res.Applied != 1 {
		t.Fatalf("second locked harvest: got %+v, want 1 applied", res)
	}
}

func TestDrainIgnoresDebounce(t *testing.T) {
	q := NewUpdateQueue(10)
	q.Push(PendingUpdate{})
	q.Push(PendingUpdate{})
	if n := q.Drain(func(PendingUpdate) {}); n != 2 {
		t.Fatalf("drained: got %d, want 2", n)
	}
}
