package cache

// node represents an element in the doubly linked list.
type node[T any] struct {
	data T
	prev *node[T]
	next *node[T]
}

// doublyLinkedList is a minimal doubly linked list; head is the most recently used end.
type doublyLinkedList[T any] struct {
	head *node[T]
	tail *node[T]
	size int
}

func newDoublyLinkedList[T any]() *doublyLinkedList[T] {
	return &doublyLinkedList[T]{}
}

func (dll *doublyLinkedList[T]) count() int {
	return dll.size
}

func (dll *doublyLinkedList[T]) isEmpty() bool {
	return dll.head == nil
}

// addToHead inserts a new node with data at the head of the list and returns it.
func (dll *doublyLinkedList[T]) addToHead(data T) *node[T] {
	n := &node[T]{data: data, next: dll.head}
	dll.linkHead(n)
	dll.size++
	return n
}

// moveToHead relinks an existing node at the head.
func (dll *doublyLinkedList[T]) moveToHead(n *node[T]) {
	if n == dll.head {
		return
	}
	dll.unlink(n)
	n.next = dll.head
	dll.linkHead(n)
}

func (dll *doublyLinkedList[T]) linkHead(n *node[T]) {
	n.prev = nil
	if dll.head != nil {
		dll.head.prev = n
	} else {
		dll.tail = n
	}
	dll.head = n
}

// delete unchains n from the list.
func (dll *doublyLinkedList[T]) delete(n *node[T]) bool {
	if n == nil {
		return false
	}
	dll.unlink(n)
	dll.size--
	return true
}

func (dll *doublyLinkedList[T]) unlink(n *node[T]) {
	if n == dll.head {
		dll.head = n.next
	}
	if n == dll.tail {
		dll.tail = n.prev
	}
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	n.next = nil
	n.prev = nil
}
