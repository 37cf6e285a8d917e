// Command gatecheck logs in against a running API and prints the gate
// decisions a mounted route guard reaches for one capability.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"retail-saas/internal/client"
	"retail-saas/internal/domain/permissions"
	"retail-saas/internal/guard"
	"retail-saas/internal/kv"
)

func main() {
	baseURL := flag.String("api", "http://localhost:8080", "API base URL")
	email := flag.String("email", "", "login email")
	password := flag.String("password", "", "login password")
	capability := flag.String("capability", string(permissions.Dashboard), "required capability")
	interval := flag.Duration("interval", guard.DefaultInterval, "block status poll interval")
	duration := flag.Duration("for", 30*time.Second, "how long to keep the guard mounted")
	redisURL := flag.String("redis", os.Getenv("REDIS_URL"), "Redis URL for the identity snapshot (memory when empty)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if err := run(*baseURL, *email, *password, *capability, *interval, *duration, *redisURL); err != nil {
		slog.Error("gatecheck failed", "error", err)
		os.Exit(1)
	}
}

func run(baseURL, email, password, capability string, interval, duration time.Duration, redisURL string) error {
	required, err := permissions.Parse(capability)
	if err != nil {
		return fmt.Errorf("capability %q: %w", capability, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var store guard.SnapshotStore = guard.NewMemoryStore()
	if redisURL != "" {
		rdb, err := kv.Connect(ctx, redisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		store = kv.NewSnapshotStore(rdb, "gatecheck:", 12*time.Hour)
	}

	session, res, err := client.New(baseURL, nil).Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := guard.SaveIdentity(ctx, store, res.Identity); err != nil {
		return err
	}

	id, err := guard.LoadIdentity(ctx, store)
	if errors.Is(err, guard.ErrNoIdentity) {
		return fmt.Errorf("server returned an unusable identity")
	}
	if err != nil {
		return err
	}

	route := guard.NewRoute(id, required, session, session, guard.Options{Interval: interval})
	route.Mount(ctx)
	defer route.Unmount()

	fmt.Printf("%s %s\n", route.MountID(), route.Decision().State)

	timeout := time.After(duration)
	for {
		select {
		case d := <-route.Updates():
			fmt.Printf("%s %s %s\n", route.MountID(), d.State, d.Reason)
		case <-timeout:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}
