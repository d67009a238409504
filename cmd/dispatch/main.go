// Command dispatch runs one reminder dispatch pass and prints the result as
// JSON. It is meant for an external scheduler; a failed run exits non-zero.
//
// With -hash-token it instead prints the bcrypt hash of the given token for
// use as DISPATCH_TOKEN_HASH.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mmynk/billreminder/internal/app"
	"github.com/mmynk/billreminder/internal/auth"
	"github.com/mmynk/billreminder/internal/config"
	"github.com/mmynk/billreminder/internal/dispatch"
	"github.com/mmynk/billreminder/pkg/logging"
)

func main() {
	hashToken := flag.String("hash-token", "", "print the bcrypt hash of this dispatch token and exit")
	timeout := flag.Duration("timeout", 5*time.Minute, "maximum duration of the run")
	flag.Parse()

	if *hashToken != "" {
		hash, err := auth.HashDispatchToken(*hashToken)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	os.Exit(run(*timeout))
}

func run(timeout time.Duration) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	logging.Setup(cfg.LogFormat, cfg.LogLevel)
	logger := slog.Default()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		return 1
	}
	defer store.Close()

	dispatcher, err := app.NewDispatch(ctx, cfg, store, logger)
	if err != nil {
		slog.Error("Failed to initialize dispatcher", "error", err)
		return 1
	}
	defer dispatcher.Close()

	result, err := dispatcher.Run(ctx)
	if err != nil {
		if errors.Is(err, dispatch.ErrRunInProgress) {
			slog.Warn("Another dispatch run is in progress")
			return 0
		}
		slog.Error("Dispatch run failed", "error", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(result); err != nil {
		slog.Error("Failed to write result", "error", err)
		return 1
	}
	return 0
}
