// Package queue provides a generic min priority queue based on container/heap
package queue

// Priority queue based on
// https://golang.org/pkg/container/heap/#example__priorityQueue

import (
	"container/heap"
)

// innerPriorityQueue implements heap.Interface
type innerPriorityQueue[E any] struct {
	items   []E
	compare func(E, E) int
}

// PriorityQueue is a min heap: Pop always returns an item that compares less
// than or equal to every other item in the queue.
type PriorityQueue[E any] struct {
	ipq innerPriorityQueue[E]
}

// NewPriorityQueue creates a new heap based PriorityQueue ordered by compare,
// which follows the cmp.Compare convention. capacity preallocates room for
// that many items.
func NewPriorityQueue[E any](compare func(E, E) int, capacity int) *PriorityQueue[E] {
	var pq PriorityQueue[E]
	pq.ipq.items = make([]E, 0, capacity)
	pq.ipq.compare = compare
	return &pq
}

// Len returns the number of items in the queue
func (pq *PriorityQueue[E]) Len() int {
	return pq.ipq.Len()
}

// Push adds x to the queue
func (pq *PriorityQueue[E]) Push(x E) {
	heap.Push(&pq.ipq, x)
}

// Pop removes and returns the smallest item in the queue. ok is false if the
// queue is empty.
func (pq *PriorityQueue[E]) Pop() (x E, ok bool) {
	if pq.ipq.Len() == 0 {
		return x, false
	}
	return heap.Pop(&pq.ipq).(E), true
}

// Peek returns the smallest item in the queue without removing it. ok is false
// if the queue is empty.
func (pq *PriorityQueue[E]) Peek() (x E, ok bool) {
	if pq.ipq.Len() == 0 {
		return x, false
	}
	return pq.ipq.items[0], true
}

func (pq *innerPriorityQueue[E]) Len() int {
	return len(pq.items)
}

func (pq *innerPriorityQueue[E]) Less(i, j int) bool {
	return pq.compare(pq.items[i], pq.items[j]) < 0
}

func (pq *innerPriorityQueue[E]) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
}

func (pq *innerPriorityQueue[E]) Push(x any) {
	pq.items = append(pq.items, x.(E))
}

func (pq *innerPriorityQueue[E]) Pop() any {
	old := pq.items
	n := len(old)
	x := old[n-1]
	var zero E
	old[n-1] = zero // drop reference
	pq.items = old[0 : n-1]
	return x
}
