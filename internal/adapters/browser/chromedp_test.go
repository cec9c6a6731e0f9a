package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestStepErr_TagsCallerDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	err := stepErr(ctx, errors.New("could not find node"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	if stepErr(ctx, nil) != nil {
		t.Fatalf("nil error must stay nil")
	}
	if err := stepErr(context.Background(), errors.New("boom")); errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("live caller ctx must not be tagged: %v", err)
	}
}

func TestStepContext_InheritsDeadlineAndCancel(t *testing.T) {
	browserCtx, cancelBrowser := context.WithCancel(context.Background())
	defer cancelBrowser()

	deadline := time.Now().Add(time.Hour)
	caller, cancelCaller := context.WithDeadline(context.Background(), deadline)
	step, done := stepContext(browserCtx, caller)
	defer done()

	if got, ok := step.Deadline(); !ok || !got.Equal(deadline) {
		t.Fatalf("deadline not inherited: %v %v", got, ok)
	}
	cancelCaller()
	select {
	case <-step.Done():
	case <-time.After(time.Second):
		t.Fatalf("step ctx not cancelled with caller")
	}
	if browserCtx.Err() != nil {
		t.Fatalf("caller cancellation must not reach the browser ctx")
	}
}

func TestAllocatorOptions(t *testing.T) {
	base := NewChrome(zerolog.Nop(), DefaultOptions()).allocatorOptions()
	custom := NewChrome(zerolog.Nop(), Options{Headless: false, ExecPath: "/usr/bin/chromium", UserAgent: "xdraft-test"}).allocatorOptions()
	if len(custom) != len(base)+2 {
		t.Fatalf("exec path and user agent should add two options: %d vs %d", len(custom), len(base))
	}
}

func TestClearRowsJSTargetsResultRows(t *testing.T) {
	want := "document.querySelectorAll('table.Tst-table tbody > tr')"
	if clearRowsJS[:len(want)] != want {
		t.Fatalf("unexpected script %q", clearRowsJS)
	}
}
