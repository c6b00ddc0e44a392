package shutdown

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"syscall"
	"testing"
	"time"
)

func newTestHandler(timeout time.Duration) *Handler {
	return NewHandler(timeout, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandler_ReverseOrder(t *testing.T) {
	h := newTestHandler(5 * time.Second)

	var mu sync.Mutex
	var order []string
	for _, name := range []string{"listener", "sweeper", "admin"} {
		h.OnShutdown(name, func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		})
	}

	if err := h.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	want := []string{"admin", "sweeper", "listener"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("hook order = %v, want %v", order, want)
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done channel should be closed after Shutdown")
	}
}

func TestHandler_ShutdownRunsOnce(t *testing.T) {
	h := newTestHandler(time.Second)
	calls := 0
	h.OnShutdown("count", func(context.Context) error {
		calls++
		return nil
	})

	_ = h.Shutdown()
	_ = h.Shutdown()
	if calls != 1 {
		t.Errorf("hook ran %d times, want 1", calls)
	}
}

func TestHandler_HookErrorsJoined(t *testing.T) {
	h := newTestHandler(time.Second)
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	ran := false

	h.OnShutdown("a", func(context.Context) error { return errA })
	h.OnShutdown("ok", func(context.Context) error { ran = true; return nil })
	h.OnShutdown("b", func(context.Context) error { return errB })

	err := h.Shutdown()
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Shutdown() = %v, want both hook errors", err)
	}
	if !ran {
		t.Error("a failing hook stopped later hooks")
	}
}

func TestHandler_HookDeadline(t *testing.T) {
	h := newTestHandler(50 * time.Millisecond)
	h.OnShutdown("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	start := time.Now()
	err := h.Shutdown()
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() = %v, want deadline exceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("hook context did not honour the timeout")
	}
}

func TestHandler_Wait_ContextCancel(t *testing.T) {
	h := newTestHandler(time.Second)
	stopped := make(chan struct{})
	h.OnShutdown("server", func(context.Context) error {
		close(stopped)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not return after cancel")
	}
	<-stopped
}

func TestHandler_Wait_WithSignal(t *testing.T) {
	h := newTestHandler(time.Second)
	var called bool
	h.OnShutdown("server", func(context.Context) error {
		called = true
		return nil
	})

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait(context.Background()) }()

	// Give Wait time to install its signal handler.
	time.Sleep(100 * time.Millisecond)
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("Kill() error = %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not complete in time")
	}
	if !called {
		t.Error("hook was not called")
	}
}
