package cache

// node is an intrusive doubly linked list element owned by the store.
// It carries the entry alongside list links; head is MRU, tail is LRU.
type node struct {
	entry *Entry

	prev *node
	next *node
}
