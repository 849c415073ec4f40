package ring

import (
	"reflect"
	"testing"
)

func TestBufferDropsOldestBeyondCapacity(t *testing.T) {
	b := NewBuffer[int](3)
	for i := 1; i <= 5; i++ {
		b.Push(i)
	}
	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	want := []int{3, 4, 5}
	if !reflect.DeepEqual(b.Items(), want) {
		t.Errorf("Items() = %v, want %v", b.Items(), want)
	}
}

func TestBufferTailReturnsAllWhenNExceedsLength(t *testing.T) {
	b := NewBuffer[int](10)
	b.Push(1)
	b.Push(2)
	got := b.Tail(5)
	want := []int{1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tail(5) = %v, want %v", got, want)
	}
}

func TestBufferTailReturnsLastN(t *testing.T) {
	b := NewBuffer[int](10)
	for i := 1; i <= 5; i++ {
		b.Push(i)
	}
	got := b.Tail(2)
	want := []int{4, 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tail(2) = %v, want %v", got, want)
	}
}
