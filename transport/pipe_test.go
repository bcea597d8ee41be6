package transport

import (
	"context"
	"testing"
	"time"
)

func TestPipeDeliversAcrossEnds(t *testing.T) {
	a, b := Pipe()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := a.Write(ctx, "hello"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := b.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "hello" {
		t.Errorf("got %q, want hello", got)
	}
}

func TestPipeDestroyUnblocksReaders(t *testing.T) {
	a, b := Pipe()
	done := make(chan error, 1)
	go func() {
		_, err := b.Read(context.Background())
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	if d, ok := a.(Destroyer); ok {
		d.Destroy()
	}
	if bd, ok := b.(Destroyer); ok {
		bd.Destroy()
	}

	select {
	case err := <-done:
		if err != ErrClosed {
			t.Errorf("got %v, want ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Read never unblocked after Destroy")
	}
}

func TestPipeCapabilitiesReportStructuredCloneAndTransfer(t *testing.T) {
	a, _ := Pipe()
	caps := a.Capabilities()
	if !caps.StructuredClone || !caps.Transfer {
		t.Errorf("got %+v, want both true", caps)
	}
}
