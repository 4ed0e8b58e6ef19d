package memory

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAttemptLockerSerializesSameAttempt(t *testing.T) {
	locker := NewAttemptLocker()
	unlock, err := locker.Lock(context.Background(), 1)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := locker.Lock(ctx, 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected second lock to wait, got %v", err)
	}

	other, err := locker.Lock(context.Background(), 2)
	if err != nil {
		t.Fatalf("different attempt should not contend: %v", err)
	}
	other()

	unlock()
	unlock()
	again, err := locker.Lock(context.Background(), 1)
	if err != nil {
		t.Fatalf("relock: %v", err)
	}
	again()

	if n := locker.size(); n != 0 {
		t.Fatalf("expected no retained locks, got %d", n)
	}
}
