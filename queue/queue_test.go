package queue_test

import (
	"cmp"
	"testing"

	"github.com/lanrat/gamsort/queue"
)

func TestEmpty(t *testing.T) {
	q := queue.NewPriorityQueue(cmp.Compare[int], 0)
	if q.Len() != 0 {
		t.Fatalf("queue len is %d, expected %d", q.Len(), 0)
	}
	if _, ok := q.Peek(); ok {
		t.Fatal("Peek on empty queue returned ok")
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("Pop on empty queue returned ok")
	}
}

func TestInit0(t *testing.T) {
	q := queue.NewPriorityQueue(cmp.Compare[int], 20)
	for i := 20; i > 0; i-- {
		q.Push(0) // all elements are the same
	}

	l := q.Len()
	if l != 20 {
		t.Fatalf("queue len is %d, expected %d", l, 20)
	}

	for i := 1; q.Len() > 0; i++ {
		x, _ := q.Peek()
		y, _ := q.Pop()
		if x != y {
			t.Fatalf("q.Peek() and q.Pop() returned different values %d %d", x, y)
		}
		if x != 0 {
			t.Errorf("%d.th pop got %d; want %d", i, x, 0)
		}
	}
}

func Test(t *testing.T) {
	q := queue.NewPriorityQueue(cmp.Compare[int], 0)

	for i := 20; i > 10; i-- {
		q.Push(i)
	}

	l := q.Len()
	if l != 10 {
		t.Fatalf("queue len is %d, expected %d", l, 10)
	}

	for i := 10; i > 0; i-- {
		q.Push(i)
	}

	l = q.Len()
	if l != 20 {
		t.Fatalf("queue len is %d, expected %d", l, 20)
	}

	for i := 1; q.Len() > 0; i++ {
		x, _ := q.Peek()
		y, ok := q.Pop()
		if !ok {
			t.Fatal("Pop returned !ok on non-empty queue")
		}
		if x != y {
			t.Fatalf("q.Peek() and q.Pop() returned different values %d %d", x, y)
		}
		if i < 20 {
			q.Push(20 + i)
		}
		if x != i {
			t.Errorf("%d.th pop got %d; want %d", i, x, i)
		}
	}
}

// handles ordered by an external table, the way the merge frontier uses it
func TestHandles(t *testing.T) {
	keys := []string{"d", "b", "a", "c"}
	q := queue.NewPriorityQueue(func(a, b int) int {
		return cmp.Compare(keys[a], keys[b])
	}, len(keys))
	for h := range keys {
		q.Push(h)
	}

	// advance handle 2 from "a" to "e" and reinsert
	h, _ := q.Pop()
	if h != 2 {
		t.Fatalf("first pop got handle %d; want 2", h)
	}
	keys[2] = "e"
	q.Push(h)

	var order []int
	for q.Len() > 0 {
		h, _ := q.Pop()
		order = append(order, h)
	}
	want := []int{1, 3, 0, 2}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("pop order %v; want %v", order, want)
		}
	}
}
