// Package main provides the omniforge CLI, which runs a project's setup
// units in phase order and remembers which ones already succeeded.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The first signal cancels ctx and lets the current unit finish; a
	// second one terminates immediately.
	go func() {
		<-ctx.Done()
		stop()
		second := make(chan os.Signal, 1)
		signal.Notify(second, os.Interrupt, syscall.SIGTERM)
		<-second
		fmt.Fprintln(os.Stderr, "omniforge: interrupted twice, exiting")
		os.Exit(130)
	}()

	os.Exit(Execute(ctx))
}
