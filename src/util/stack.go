// stack.go provides a slice backed stack that holds arbitrary data.
// The bottom element is the first entry into the stack, while the top is
// the last entry to be added to the stack. A stack is owned by a single
// recursion and is not safe for concurrent use.

package util

// Stack is a last in, first out stack of T.
type Stack[T any] struct {
	e []T // Entries, bottom first.
}

// Push adds a new element to the top of the stack.
func (s *Stack[T]) Push(e T) {
	s.e = append(s.e, e)
}

// Pop removes and returns the last inserted element on the stack.
// The second return value is false if the stack is empty.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if len(s.e) == 0 {
		return zero, false
	}
	e := s.e[len(s.e)-1]
	s.e[len(s.e)-1] = zero
	s.e = s.e[:len(s.e)-1]
	return e, true
}

// Peek works just like Pop, but it does not remove the element from the stack.
func (s *Stack[T]) Peek() (T, bool) {
	var zero T
	if len(s.e) == 0 {
		return zero, false
	}
	return s.e[len(s.e)-1], true
}

// Size returns the number of elements in the stack.
func (s *Stack[T]) Size() int {
	return len(s.e)
}

// Get returns the nth element from the stack, top down, not zero indexed.
// Get(1) returns the first element on stack, and is similar to Peek.
// Get(Stack.Size()) returns the bottom element. If the index n is out of
// range the second return value is false.
func (s *Stack[T]) Get(n int) (T, bool) {
	var zero T
	if n < 1 || n > len(s.e) {
		return zero, false
	}
	return s.e[len(s.e)-n], true
}

// Any returns true if f holds for some element of the stack.
func (s *Stack[T]) Any(f func(T) bool) bool {
	for i1 := len(s.e) - 1; i1 >= 0; i1-- {
		if f(s.e[i1]) {
			return true
		}
	}
	return false
}
