package host

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/lawnchairsociety/gameconsole/internal/console"
)

type lines struct{ got []string }

func (l *lines) WriteLine(line string) error {
	l.got = append(l.got, line)
	return nil
}

func newTestLoop(t *testing.T, interval time.Duration) (*Loop, *lines) {
	t.Helper()
	reg := console.NewRegistry()
	reg.MustRegister("ping", nil, func(*console.Invocation, console.Args) (string, error) {
		return "pong", nil
	})
	reg.MustRegister("boom", nil, func(*console.Invocation, console.Args) (string, error) {
		panic("kaboom")
	})
	d := console.NewDispatcher(reg, console.NewCoercer(nil), console.NewTokenizer())
	out := &lines{}
	return New(console.New(d, out, console.StartVisible()), interval), out
}

func startLoop(t *testing.T, l *Loop) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()
	return func() {
		cancel()
		if err := <-errc; err != nil {
			t.Errorf("Run returned %v", err)
		}
	}
}

func TestSubmitRunsOnLoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	l, out := newTestLoop(t, time.Hour)
	stop := startLoop(t, l)

	outcomes, err := l.Submit(context.Background(), "test", "ping; nope; boom")
	stop()

	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}
	if !outcomes[0].OK() || outcomes[0].Output != "pong" {
		t.Errorf("ping outcome = %+v", outcomes[0])
	}
	if outcomes[1].Status != console.CommandNotFound {
		t.Errorf("nope status = %v", outcomes[1].Status)
	}
	if outcomes[2].Status != console.HandlerFailed {
		t.Errorf("boom status = %v", outcomes[2].Status)
	}
	if len(out.got) == 0 || out.got[0] != "> ping; nope; boom" {
		t.Errorf("console output = %q", out.got)
	}
}

func TestTicks(t *testing.T) {
	defer goleak.VerifyNone(t)

	l, _ := newTestLoop(t, time.Millisecond)
	var ticks atomic.Int32
	fired := make(chan struct{})
	l.OnTick(func(dt time.Duration) {
		if dt <= 0 {
			t.Errorf("tick dt = %v", dt)
		}
		if ticks.Add(1) == 3 {
			close(fired)
		}
	})
	l.OnTick(func(time.Duration) { panic("bad ticker") })

	stop := startLoop(t, l)
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Error("ticker did not fire three times")
	}
	stop()
}

func TestPostAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	l, _ := newTestLoop(t, time.Hour)
	startLoop(t, l)()

	if err := l.Post(context.Background(), func() {}); !errors.Is(err, ErrStopped) {
		t.Errorf("Post after stop = %v, want ErrStopped", err)
	}
	if _, err := l.Submit(context.Background(), "test", "ping"); !errors.Is(err, ErrStopped) {
		t.Errorf("Submit after stop = %v, want ErrStopped", err)
	}
}

func TestDoHonoursContext(t *testing.T) {
	l, _ := newTestLoop(t, time.Hour)

	// Never started: the job waits in the queue until ctx expires.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Do(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do = %v, want DeadlineExceeded", err)
	}
}

func TestRunTwice(t *testing.T) {
	defer goleak.VerifyNone(t)

	l, _ := newTestLoop(t, time.Hour)
	stop := startLoop(t, l)
	// Make sure the first Run has started.
	if err := l.Do(context.Background(), func() {}); err != nil {
		t.Fatal(err)
	}

	err := l.Run(context.Background())
	stop()
	if err == nil || !strings.Contains(err.Error(), "already running") {
		t.Errorf("second Run = %v", err)
	}
}
