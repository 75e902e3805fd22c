package search

import (
	"container/heap"
)

// trail is a persistent singly linked path back to the start player.
type trail struct {
	key  string
	prev *trail
}

func (t *trail) keys() []string {
	n := 0
	for p := t; p != nil; p = p.prev {
		n++
	}
	out := make([]string, n)
	for p := t; p != nil; p = p.prev {
		n--
		out[n] = p.key
	}
	return out
}

type entry struct {
	f, g  int
	key   string
	trail *trail
}

// queue orders entries by f, then g, then key, all ascending.
type queue []*entry

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	if q[i].g != q[j].g {
		return q[i].g < q[j].g
	}
	return q[i].key < q[j].key
}

func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queue) Push(x any) { *q = append(*q, x.(*entry)) }

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

type frontier struct{ q queue }

func (f *frontier) push(e *entry) { heap.Push(&f.q, e) }

func (f *frontier) pop() *entry { return heap.Pop(&f.q).(*entry) }

func (f *frontier) len() int { return f.q.Len() }
