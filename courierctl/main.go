package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/sweater-ventures/courier/app"
)

type EmitCmd struct {
	URL       string `arg:"--url,required" help:"Courier base URL"`
	Token     string `arg:"--token,required" help:"Admin API token as <token-id>.<secret>"`
	EventType string `arg:"--event-type" default:"sms.delivered" help:"SMS lifecycle event type"`
	Recipient string `arg:"--recipient" default:"+15555550100" help:"Recipient phone number"`
	Rate      int    `arg:"--rate" default:"10" help:"Events per second"`
	Count     int    `arg:"--count" default:"100" help:"Total events to emit"`
}

type ReceiveCmd struct {
	URL         string        `arg:"--url,required" help:"Courier base URL"`
	Token       string        `arg:"--token,required" help:"Admin API token as <token-id>.<secret>"`
	Listen      string        `arg:"--listen" default:":9090" help:"Local listen address"`
	EndpointURL string        `arg:"--endpoint-url,required" help:"Publicly reachable URL for this receiver"`
	Events      []string      `arg:"--event" help:"Event types to subscribe to (default: all sms.* events)"`
	Duration    time.Duration `arg:"--duration" default:"30s" help:"How long to listen"`
}

type args struct {
	Emit    *EmitCmd    `arg:"subcommand:emit" help:"Emit SMS lifecycle events into Courier"`
	Receive *ReceiveCmd `arg:"subcommand:receive" help:"Receive webhooks from Courier and verify signatures"`
}

func (args) Description() string {
	return "courierctl — load testing tool for the Courier webhook delivery engine"
}

func main() {
	var a args
	p := arg.MustParse(&a)

	switch {
	case a.Emit != nil:
		runEmit(a.Emit)
	case a.Receive != nil:
		runReceive(a.Receive)
	default:
		p.WriteUsage(os.Stdout)
		fmt.Println()
		p.WriteHelp(os.Stdout)
		os.Exit(1)
	}
}

func runEmit(cmd *EmitCmd) {
	client := &http.Client{Timeout: 10 * time.Second}
	interval := time.Second / time.Duration(cmd.Rate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var sent, errors int
	start := time.Now()

	for i := 0; i < cmd.Count; i++ {
		<-ticker.C

		now := time.Now().UTC()
		body, _ := json.Marshal(map[string]any{
			"event_type":          cmd.EventType,
			"recipient":           cmd.Recipient,
			"provider":            "courierctl",
			"provider_message_id": fmt.Sprintf("ctl-%d-%d", start.UnixNano(), i),
			"sent_at":             now.Format(time.RFC3339Nano),
		})

		req, err := http.NewRequest(http.MethodPost, cmd.URL+"/events", bytes.NewReader(body))
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nerror creating request: %v\n", err)
			errors++
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+cmd.Token)

		resp, err := client.Do(req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nerror emitting event: %v\n", err)
			errors++
			continue
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusAccepted {
			fmt.Fprintf(os.Stderr, "\nunexpected status %d for event %d\n", resp.StatusCode, i+1)
			errors++
			continue
		}

		sent++
		fmt.Fprintf(os.Stderr, "\rEmitted: %d/%d  Errors: %d", sent, cmd.Count, errors)
	}

	elapsed := time.Since(start)
	actualRate := float64(sent) / elapsed.Seconds()
	fmt.Fprintf(os.Stderr, "\r%s\r", "                                                  ")
	fmt.Fprintf(os.Stderr, "Emit complete: %d/%d sent, %d errors, %.1fs elapsed, %.1f events/sec\n",
		sent, cmd.Count, errors, elapsed.Seconds(), actualRate)
}

func runReceive(cmd *ReceiveCmd) {
	// Generate random suffix for subscription name
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = letters[rand.Intn(len(letters))]
	}
	subscriptionName := "courierctl-receiver-" + string(suffix)

	events := cmd.Events
	if len(events) == 0 {
		events = []string{"sms.sent", "sms.delivered", "sms.failed", "sms.bounced", "sms.read"}
	}

	client := &http.Client{Timeout: 10 * time.Second}

	// Register subscription
	regBody, _ := json.Marshal(map[string]any{
		"name":   subscriptionName,
		"url":    cmd.EndpointURL,
		"events": events,
	})

	regReq, err := http.NewRequest(http.MethodPost, cmd.URL+"/webhooks", bytes.NewReader(regBody))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating registration request: %v\n", err)
		os.Exit(1)
	}
	regReq.Header.Set("Content-Type", "application/json")
	regReq.Header.Set("Authorization", "Bearer "+cmd.Token)

	regResp, err := client.Do(regReq)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error registering subscription: %v\n", err)
		os.Exit(1)
	}
	defer regResp.Body.Close()

	if regResp.StatusCode != http.StatusCreated {
		fmt.Fprintf(os.Stderr, "subscription registration failed with status %d\n", regResp.StatusCode)
		os.Exit(1)
	}

	var subResp struct {
		ID     string `json:"id"`
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(regResp.Body).Decode(&subResp); err != nil {
		fmt.Fprintf(os.Stderr, "error decoding subscription response: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Registered subscription %s (ID: %s)\n", subscriptionName, subResp.ID)

	// Track received webhooks
	var received, badSignature int

	// Start webhook HTTP server
	mux := http.NewServeMux()
	mux.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "unreadable body", http.StatusBadRequest)
			return
		}

		signature := r.Header.Get("X-Webhook-Signature")
		if !app.VerifySignature(subResp.Secret, body, signature) {
			badSignature++
			http.Error(w, "bad signature", http.StatusBadRequest)
			return
		}

		received++
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:    cmd.Listen,
		Handler: mux,
	}

	// Start server in background
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "webhook server error: %v\n", err)
		}
	}()

	fmt.Fprintf(os.Stderr, "Listening on %s for %s...\n", cmd.Listen, cmd.Duration)

	// Wait for duration
	time.Sleep(cmd.Duration)

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)

	// Deregister subscription
	delReq, err := http.NewRequest(http.MethodDelete, cmd.URL+"/webhooks/"+subResp.ID, nil)
	if err == nil {
		delReq.Header.Set("Authorization", "Bearer "+cmd.Token)
		delResp, err := client.Do(delReq)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to deregister subscription: %v\n", err)
		} else {
			delResp.Body.Close()
			if delResp.StatusCode == http.StatusOK {
				fmt.Fprintf(os.Stderr, "Deregistered subscription %s\n", subResp.ID)
			} else {
				fmt.Fprintf(os.Stderr, "warning: deregistration returned status %d\n", delResp.StatusCode)
			}
		}
	}

	fmt.Fprintf(os.Stderr, "Receive complete: %d webhooks received, %d bad signatures\n", received, badSignature)
}
