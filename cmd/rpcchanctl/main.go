// Command rpcchanctl runs a small self-contained demo of two rpcchan
// channels wired over an in-process pipe: one exposes a math API, the
// other calls it and prints the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tenzoki/rpcchan"
	"github.com/tenzoki/rpcchan/config"
	"github.com/tenzoki/rpcchan/transport"
)

func main() {
	debug := flag.Bool("debug", false, "enable verbose channel logging")
	timeoutMs := flag.Int64("timeout-ms", 5000, "per-call timeout in milliseconds")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *debug, *timeoutMs); err != nil {
		log.Fatalf("rpcchanctl: %v", err)
	}
}

func run(ctx context.Context, debug bool, timeoutMs int64) error {
	opts := config.DefaultOptions()
	opts.Debug = debug
	opts.TimeoutMs = timeoutMs

	serverIO, clientIO := transport.Pipe()

	server := rpcchan.NewChannel(serverIO, opts)
	defer server.Destroy()
	server.Expose(map[string]any{
		"math": map[string]any{
			"add": rpcchan.Method(func(args []any) (any, error) {
				sum := 0.0
				for _, a := range args {
					n, ok := a.(float64)
					if !ok {
						return nil, fmt.Errorf("math.add: argument %v is not a number", a)
					}
					sum += n
				}
				return sum, nil
			}, nil, nil),
		},
	}, nil)

	client := rpcchan.NewChannel(clientIO, opts)
	defer client.Destroy()

	callCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	result, err := client.GetAPI().Path("math").Path("add").Call(callCtx, 2, 3, 4)
	if err != nil {
		return fmt.Errorf("math.add call failed: %w", err)
	}
	fmt.Printf("math.add(2, 3, 4) = %v\n", result)
	return nil
}
