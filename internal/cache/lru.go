package cache

// lruNode is an element of lruList. It carries the key so eviction can
// delete the map entry.
type lruNode[K comparable] struct {
	key        K
	prev, next *lruNode[K]
}

// lruList is a circular doubly-linked list with a sentinel root.
// root.next is the most recently used node, root.prev the least.
// It is not safe for concurrent use; Cache serializes access.
type lruList[K comparable] struct {
	root lruNode[K]
	len  int
}

func (l *lruList[K]) lazyInit() {
	if l.root.next == nil {
		l.root.next = &l.root
		l.root.prev = &l.root
	}
}

// pushFront inserts key as the most recently used node.
func (l *lruList[K]) pushFront(key K) *lruNode[K] {
	l.lazyInit()
	n := &lruNode[K]{key: key}
	l.insertAfter(n, &l.root)
	return n
}

// touch marks n as most recently used.
func (l *lruList[K]) touch(n *lruNode[K]) {
	if l.root.next == n {
		return
	}
	l.remove(n)
	l.insertAfter(n, &l.root)
}

// oldest returns the least recently used node, or nil.
func (l *lruList[K]) oldest() *lruNode[K] {
	if l.len == 0 {
		return nil
	}
	return l.root.prev
}

func (l *lruList[K]) insertAfter(n, at *lruNode[K]) {
	n.prev = at
	n.next = at.next
	at.next.prev = n
	at.next = n
	l.len++
}

func (l *lruList[K]) remove(n *lruNode[K]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
	l.len--
}

func (l *lruList[K]) reset() {
	l.root.next = &l.root
	l.root.prev = &l.root
	l.len = 0
}
