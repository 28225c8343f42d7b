package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackmcnulty/sports-ticker/internal/retry"
)

func TestExecute(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name      string
		attempts  int
		failFirst int
		wantCalls int
		wantErr   bool
	}{
		{"succeeds first try", 3, 0, 1, false},
		{"succeeds after retries", 3, 2, 3, false},
		{"exhausts attempts", 3, 5, 3, true},
		{"single attempt", 1, 1, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := retry.NewRetryPolicy(tt.attempts, time.Millisecond)

			calls := 0
			err := policy.Execute(context.Background(), func(context.Context) error {
				calls++
				if calls <= tt.failFirst {
					return errBoom
				}
				return nil
			})

			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errBoom) {
				t.Errorf("error should wrap the last failure: %v", err)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestExecute_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := retry.NewRetryPolicy(10, time.Hour)

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- policy.Execute(ctx, func(context.Context) error {
			calls++
			return errors.New("down")
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected error after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("Execute did not return after cancel")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
