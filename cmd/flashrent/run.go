package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// application is the part of *fx.App that run drives.
type application interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Done() <-chan os.Signal
	StopTimeout() time.Duration
}

// run starts app, waits for ctx or an fx shutdown request and stops it within the app stop timeout.
func run(ctx context.Context, app application, errOut io.Writer) int {
	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(errOut, "failed to start flashrent: %v\n", err)
		return 1
	}

	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintf(errOut, "failed to stop flashrent: %v\n", err)
		return 1
	}
	return 0
}
