package rpcchan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tenzoki/rpcchan/config"
	"github.com/tenzoki/rpcchan/transport"
	"github.com/tenzoki/rpcchan/validate"
)

func newPair(t *testing.T, opts config.Options) (server, client *Channel) {
	t.Helper()
	a, b := transport.Pipe()
	server = NewChannel(a, opts)
	client = NewChannel(b, opts)
	t.Cleanup(func() {
		server.Destroy()
		client.Destroy()
	})
	return server, client
}

func TestCallMathAdd(t *testing.T) {
	opts := config.DefaultOptions()
	server, client := newPair(t, opts)

	server.Expose(map[string]any{
		"math": map[string]any{
			"add": Method(func(args []any) (any, error) {
				sum := 0.0
				for _, a := range args {
					sum += a.(float64)
				}
				return sum, nil
			}, nil, nil),
		},
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := client.GetAPI().Path("math").Path("add").Call(ctx, 2, 3, 4)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result != 9.0 {
		t.Errorf("got %v, want 9", result)
	}
}

func TestCallAsTypedResult(t *testing.T) {
	opts := config.DefaultOptions()
	server, client := newPair(t, opts)
	server.Expose(map[string]any{
		"greet": Method(func(args []any) (any, error) {
			return "hello " + args[0].(string), nil
		}, nil, nil),
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := CallAs[string](ctx, client.GetAPI().Path("greet"), "world")
	if err != nil {
		t.Fatalf("CallAs: %v", err)
	}
	if got != "hello world" {
		t.Errorf("got %q", got)
	}
}

func TestWithCallbackInvokedFromRemote(t *testing.T) {
	opts := config.DefaultOptions()
	server, client := newPair(t, opts)

	server.Expose(map[string]any{
		"withCallback": Method(func(args []any) (any, error) {
			cb, ok := args[0].(*Callback)
			if !ok {
				return nil, errors.New("argument 0 is not a callback")
			}
			return cb.invoke([]any{"from-server"})
		}, nil, nil),
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	received := make(chan any, 1)
	cb := NewCallback(func(args []any) (any, error) {
		received <- args[0]
		return "ack", nil
	})

	result, err := client.GetAPI().Path("withCallback").Call(ctx, cb)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result != "ack" {
		t.Errorf("got %v, want ack", result)
	}
	select {
	case v := <-received:
		if v != "from-server" {
			t.Errorf("callback received %v, want from-server", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback was never invoked")
	}
}

func TestCallbackIdentityKeyedReuse(t *testing.T) {
	reg := newCallbackRegistry()
	cb := NewCallback(func(args []any) (any, error) { return nil, nil })

	id1 := reg.register(cb)
	id2 := reg.register(cb)
	if id1 != id2 {
		t.Errorf("expected the same *Callback to register exactly once, got %q and %q", id1, id2)
	}

	other := NewCallback(func(args []any) (any, error) { return nil, nil })
	id3 := reg.register(other)
	if id3 == id1 {
		t.Errorf("expected a distinct callback to get a distinct id")
	}
}

func TestPropertyGetSetRoundTrip(t *testing.T) {
	opts := config.DefaultOptions()
	server, client := newPair(t, opts)

	value := "initial"
	server.Expose(map[string]any{
		"name": &Property{
			Get: func() any { return value },
			Set: func(v any) error { value = v.(string); return nil },
		},
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := client.GetAPI().Path("name").Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "initial" {
		t.Errorf("got %v", got)
	}

	if err := client.GetAPI().Path("name").Set(ctx, "updated"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if value != "updated" {
		t.Errorf("server-side value = %q, want updated", value)
	}

	got, err = client.GetAPI().Path("name").Get(ctx)
	if err != nil {
		t.Fatalf("Get after Set: %v", err)
	}
	if got != "updated" {
		t.Errorf("got %v, want updated", got)
	}
}

func TestSetOnMissingParentIsRoutingError(t *testing.T) {
	opts := config.DefaultOptions()
	server, client := newPair(t, opts)
	server.Expose(map[string]any{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := client.GetAPI().Path("missing").Path("child").Set(ctx, 1)
	if err == nil {
		t.Fatalf("expected a routing error")
	}
	if !hasName(err, nameRouting) {
		t.Errorf("got %v, want a routing error", err)
	}
}

func TestInputValidationRejectsBadArgs(t *testing.T) {
	opts := config.DefaultOptions()
	server, client := newPair(t, opts)

	input := rejectingSchema{}
	server.Expose(map[string]any{
		"strict": Method(func(args []any) (any, error) {
			t.Fatal("handler must not run when input validation fails")
			return nil, nil
		}, input, nil),
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := client.GetAPI().Path("strict").Call(ctx, "whatever")
	if !IsRPCValidationError(err) {
		t.Fatalf("got %v, want a validation error", err)
	}
}

type rejectingSchema struct{}

func (rejectingSchema) Validate(value any) (any, []validate.Issue, error) {
	return nil, []validate.Issue{{Message: "always rejected"}}, nil
}

func TestInterceptorOnionOrderAuthShortCircuits(t *testing.T) {
	opts := config.DefaultOptions()
	server, client := newPair(t, opts)

	var order []string
	server.Use(func(ctx context.Context, info CallInfo, next Next) (any, error) {
		order = append(order, "auth-before")
		return nil, errors.New("unauthorized")
	})
	server.Use(func(ctx context.Context, info CallInfo, next Next) (any, error) {
		order = append(order, "logging-before")
		res, err := next(ctx)
		order = append(order, "logging-after")
		return res, err
	})
	server.Expose(map[string]any{
		"secret": Method(func(args []any) (any, error) {
			t.Fatal("handler must not run: auth interceptor should short-circuit")
			return nil, nil
		}, nil, nil),
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := client.GetAPI().Path("secret").Call(ctx)
	if err == nil {
		t.Fatalf("expected the auth interceptor's error")
	}
	if len(order) != 1 || order[0] != "auth-before" {
		t.Errorf("got order %v, want the second interceptor never to run since the first short-circuited", order)
	}
}

func TestTimeoutErrorAndLateResponseDropped(t *testing.T) {
	opts := config.DefaultOptions()
	opts.TimeoutMs = 20
	server, client := newPair(t, opts)

	release := make(chan struct{})
	server.Expose(map[string]any{
		"slow": Method(func(args []any) (any, error) {
			<-release
			return "late", nil
		}, nil, nil),
	}, nil)
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := client.GetAPI().Path("slow").Call(ctx)
	if !IsRPCTimeoutError(err) {
		t.Fatalf("got %v, want a timeout error", err)
	}
	if n := client.pending.len(); n != 0 {
		t.Errorf("got %d pending entries after timeout, want 0 so the late response has nothing to resolve", n)
	}
}

func TestDestroyIsIdempotentAndRejectsPending(t *testing.T) {
	opts := config.DefaultOptions()
	opts.TimeoutMs = 0
	a, b := transport.Pipe()
	server := NewChannel(a, opts)
	client := NewChannel(b, opts)

	block := make(chan struct{})
	server.Expose(map[string]any{
		"wait": Method(func(args []any) (any, error) {
			<-block
			return nil, nil
		}, nil, nil),
	}, nil)

	resultCh := make(chan error, 1)
	go func() {
		_, err := client.GetAPI().Path("wait").Call(context.Background())
		resultCh <- err
	}()

	time.Sleep(50 * time.Millisecond)
	if err := client.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := client.Destroy(); err != nil {
		t.Fatalf("second Destroy should be a no-op, got: %v", err)
	}

	select {
	case err := <-resultCh:
		var de *DestroyedError
		if !errors.As(err, &de) {
			t.Errorf("got %v, want a DestroyedError", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pending call was never rejected by Destroy")
	}

	close(block)
	server.Destroy()
}
