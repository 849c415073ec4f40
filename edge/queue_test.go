package edge

import "testing"

func TestPriorityQueueSeparatesCriticalAndNormal(t *testing.T) {
	q := NewPriorityQueue()
	q.Enqueue("a", true)
	q.Enqueue("b", false)
	q.Enqueue("c", true)

	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}

	critical := q.DequeueCritical()
	if len(critical) != 2 {
		t.Errorf("DequeueCritical() len = %d, want 2", len(critical))
	}
	if q.Len() != 1 {
		t.Errorf("Len() after draining critical = %d, want 1", q.Len())
	}

	normal := q.DequeueNormal(10)
	if len(normal) != 1 || normal[0] != "b" {
		t.Errorf("DequeueNormal() = %v, want [b]", normal)
	}
	if q.Len() != 0 {
		t.Errorf("Len() after draining = %d, want 0", q.Len())
	}
}

func TestPriorityQueueDequeueNormalBatch(t *testing.T) {
	q := NewPriorityQueue()
	for i := 0; i < 5; i++ {
		q.Enqueue(i, false)
	}
	batch := q.DequeueNormal(2)
	if len(batch) != 2 {
		t.Fatalf("DequeueNormal(2) len = %d, want 2", len(batch))
	}
	if batch[0] != 0 || batch[1] != 1 {
		t.Errorf("DequeueNormal(2) = %v, want [0 1] (oldest first)", batch)
	}
	if q.Len() != 3 {
		t.Errorf("Len() after partial drain = %d, want 3", q.Len())
	}
}
