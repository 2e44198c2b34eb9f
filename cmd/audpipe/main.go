// SPDX-License-Identifier: EPL-2.0

// Command audpipe adjusts the volume and speed of sound files and either
// transcribes them with whisper.cpp or writes them back as WAV.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "audpipe:", err)
		}
		stop()
		os.Exit(1)
	}
}
