// webhookgen sends signed synthetic payment events to a running payhook
// server, for local development and load checks.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fr0stylo/payhook/pkg/webhookclient"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	interval, err := time.ParseDuration(cfg.Interval)
	if err != nil || interval <= 0 {
		fmt.Fprintln(os.Stderr, "interval must be a positive duration")
		os.Exit(1)
	}

	client := webhookclient.Client{
		Endpoint: cfg.BaseURL,
		Secret:   cfg.Secret,
		Timeout:  10 * time.Second,
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sent := 0
	for {
		if err := sendEvent(client, cfg); err != nil {
			fmt.Fprintln(os.Stderr, "webhook error:", err)
		}
		sent++
		if cfg.Count > 0 && sent >= cfg.Count {
			return
		}
		<-ticker.C
	}
}

func loadConfig(path string) (config, error) {
	if strings.TrimSpace(path) == "" {
		return config{}, fmt.Errorf("config path is required")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Secret = strings.TrimSpace(cfg.Secret)
	cfg.PaymentID = strings.TrimSpace(cfg.PaymentID)
	cfg.EventType = strings.TrimSpace(cfg.EventType)
	cfg.Interval = strings.TrimSpace(cfg.Interval)

	if cfg.BaseURL == "" || cfg.Secret == "" {
		return config{}, fmt.Errorf("config must include base_url and secret")
	}
	if cfg.EventType == "" {
		cfg.EventType = "payment_captured"
	}
	if cfg.Interval == "" {
		cfg.Interval = "5s"
	}

	return cfg, nil
}

func sendEvent(client webhookclient.Client, cfg config) error {
	eventID, err := randomID("evt")
	if err != nil {
		return fmt.Errorf("failed to generate event id: %w", err)
	}

	paymentID := cfg.PaymentID
	if paymentID == "" {
		paymentID, err = randomID("pay")
		if err != nil {
			return fmt.Errorf("failed to generate payment id: %w", err)
		}
	}

	event := webhookclient.Event{
		EventID:   eventID,
		PaymentID: paymentID,
		EventType: cfg.EventType,
		Extra: map[string]any{
			"amount":   1000,
			"currency": "USD",
		},
	}
	if err := client.Send(context.Background(), event); err != nil {
		return err
	}

	fmt.Printf("Sent %s %s (payment %s)\n", cfg.EventType, eventID, paymentID)
	return nil
}

func randomID(prefix string) (string, error) {
	raw := make([]byte, 8)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return prefix + "_" + hex.EncodeToString(raw), nil
}
