package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Aryanshaw/bitespeed-client/internal/config"
	"github.com/Aryanshaw/bitespeed-client/internal/domain"
	"github.com/Aryanshaw/bitespeed-client/internal/logger"
	"github.com/Aryanshaw/bitespeed-client/pkg/bitespeed"
	"github.com/Aryanshaw/bitespeed-client/pkg/httpclient"
	"github.com/spf13/pflag"
)

// errUnhealthy signals a failed health probe; the probe result is already
// printed, so main only sets the exit code.
var errUnhealthy = errors.New("unhealthy")

// contactctl identifies a single contact (or probes service health) from the
// command line and prints the raw service response as indented JSON.
func main() {
	if err := run(); err != nil {
		if !errors.Is(err, errUnhealthy) {
			fmt.Fprintf(os.Stderr, "contactctl: %v\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	email := pflag.String("email", "", "email address to identify")
	phone := pflag.String("phone", "", "phone number to identify")
	health := pflag.Bool("health", false, "probe service health and exit")
	baseURL := pflag.String("base-url", "", "override the configured service base URL")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	url := strings.TrimSpace(*baseURL)
	if url == "" {
		url = cfg.ServiceBaseURL
	}
	client := bitespeed.New(url, httpclient.NewRestyClient(cfg.RequestTimeout), logger.NopLogger{})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *health {
		if !client.CheckHealth(ctx) {
			fmt.Println("unhealthy")
			return errUnhealthy
		}
		fmt.Println("healthy")
		return nil
	}

	// The at-least-one-field rule lives here at the boundary; the client
	// forwards whatever payload it is given.
	sub := domain.Submission{Email: *email, PhoneNumber: *phone}.Normalize()
	if err := sub.Validate(); err != nil {
		return err
	}

	resp, err := client.Identify(ctx, bitespeed.IdentifyRequest{
		Email:       sub.Email,
		PhoneNumber: sub.PhoneNumber,
	})
	if err != nil {
		return fmt.Errorf("identify: %w", err)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("render response: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
