package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fortuna/services/playbyplay-service/internal/poller"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("pbp-invoke: %v", err)
	}
}

func run() error {
	var addr, taskName string
	var timeout time.Duration

	flagSet := pflag.NewFlagSet("pbp-invoke", pflag.ContinueOnError)
	flagSet.StringVar(&addr, "addr", "http://localhost:8080", "base URL of the running service")
	flagSet.StringVarP(&taskName, "task", "t", "poller", "task to run: manager, kickoff, poller or scoreboard")
	flagSet.DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	task := poller.ParseTask(taskName)
	payload := poller.EncodeTask(task)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	url := strings.TrimRight(addr, "/") + "/api/v1/invoke"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoking %s: %w", task.Name(), err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("invoking %s: %s: %s", task.Name(), resp.Status, strings.TrimSpace(string(body)))
	}
	log.Printf("task %s accepted", task.Name())
	return nil
}
