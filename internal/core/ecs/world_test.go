package ecs

import "testing"

type hp struct{ v int }

func TestStaleHandleAfterDestroy(t *testing.T) {
	w := NewWorld()
	store := NewPtrComponentStore[hp]()
	w.Registry().Register(store)

	id := w.CreateEntity()
	if id.IsZero() {
		t.Fatal("first entity must not be the zero ID")
	}
	store.Set(id, &hp{v: 10})

	if !w.DestroyNow(id) {
		t.Fatal("DestroyNow returned false for live entity")
	}
	if w.Alive(id) {
		t.Fatal("destroyed handle still alive")
	}
	if store.Has(id) {
		t.Fatal("component not removed on destroy")
	}

	reused := w.CreateEntity()
	if reused.Index() != id.Index() {
		t.Fatalf("expected slot reuse, got %v after %v", reused, id)
	}
	if w.Alive(id) {
		t.Fatal("old generation resolved after slot reuse")
	}
	if !w.Alive(reused) {
		t.Fatal("new generation not alive")
	}
}

func TestDeferredDestruction(t *testing.T) {
	w := NewWorld()
	var seen []EntityID
	w.OnDestroy(func(id EntityID) { seen = append(seen, id) })

	a := w.CreateEntity()
	b := w.CreateEntity()
	w.MarkForDestruction(a)
	w.MarkForDestruction(a) // duplicate marks are harmless
	if !w.Alive(a) {
		t.Fatal("marked entity destroyed before flush")
	}
	if n := w.FlushDestroyQueue(); n != 1 {
		t.Fatalf("flushed %d, want 1", n)
	}
	if w.Alive(a) || !w.Alive(b) {
		t.Fatal("wrong entity destroyed")
	}
	if len(seen) != 1 || seen[0] != a {
		t.Fatalf("OnDestroy saw %v", seen)
	}
	if w.Pool().Live() != 1 {
		t.Fatalf("Live = %d", w.Pool().Live())
	}
}

func TestEach2Ordered(t *testing.T) {
	w := NewWorld()
	a := NewPtrComponentStore[hp]()
	b := NewPtrComponentStore[hp]()
	var ids []EntityID
	for i := 0; i < 5; i++ {
		id := w.CreateEntity()
		ids = append(ids, id)
		a.Set(id, &hp{v: i})
		if i%2 == 0 {
			b.Set(id, &hp{v: i * 10})
		}
	}
	var got []EntityID
	Each2(a, b, func(id EntityID, _ *hp, _ *hp) { got = append(got, id) })
	want := []EntityID{ids[0], ids[2], ids[4]}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
