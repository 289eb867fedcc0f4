package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sweater-ventures/courier/db"
)

// Outcome of a single delivery attempt, as published on the event bus.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeRetrying  = "retrying"
	OutcomeFailed    = "failed"
)

// noResponseCode is recorded as the HTTP code when an attempt never produced
// an HTTP response (transport error, timeout, payload rejected before send).
const noResponseCode = -1

const maxBackoffMs = 3_600_000

const maxRedirects = 3

// deliveryTask is one unit of work for a dispatch worker. Rows arriving from
// the retry scheduler were already claimed by the sweep's UPDATE; rows handed
// off straight from emission are still pending and the worker claims them
// itself, which also resolves the race when a sweep got there first.
type deliveryTask struct {
	delivery db.WebhookDelivery
	claimed  bool
}

// DispatcherState owns the worker pool that performs outbound webhook
// requests. Create one with StartDispatcher.
type DispatcherState struct {
	taskQueue   chan deliveryTask
	shutdownCtx context.Context
}

// Submit hands a claimed delivery row to the worker pool, blocking while the
// queue is full. Returns false once the dispatcher is shutting down.
func (ds *DispatcherState) Submit(delivery db.WebhookDelivery) bool {
	select {
	case ds.taskQueue <- deliveryTask{delivery: delivery, claimed: true}:
		return true
	case <-ds.shutdownCtx.Done():
		return false
	}
}

// StartDispatcher launches the delivery worker pool and wires the
// application's shutdown hook. Workers drain both the fresh-emission channel
// and scheduler submissions; on shutdown, queued work is abandoned for the
// reclaim sweep and in-flight HTTP requests get the configured grace period
// to finish.
func StartDispatcher(courier *Application) *DispatcherState {
	shutdownCtx, cancel := context.WithCancel(context.Background())
	ds := &DispatcherState{
		taskQueue:   make(chan deliveryTask, courier.Config.DeliveryQueueSize),
		shutdownCtx: shutdownCtx,
	}

	client := &http.Client{
		Timeout: courier.Config.DeliveryTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	var workers sync.WaitGroup
	for range courier.Config.DeliveryWorkers {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for task := range ds.taskQueue {
				if shutdownCtx.Err() != nil {
					// Grace expired; leave the row for the reclaim sweep.
					continue
				}
				processDelivery(shutdownCtx, courier, client, task)
			}
		}()
	}

	// Forwarder: fresh emissions become unclaimed tasks. Closing DeliveryChan
	// closes the task queue behind it, which releases the workers.
	go func() {
		for delivery := range courier.DeliveryChan {
			ds.taskQueue <- deliveryTask{delivery: delivery}
		}
		close(ds.taskQueue)
	}()

	courier.SetStopDelivery(func() {
		close(courier.DeliveryChan)
		done := make(chan struct{})
		go func() {
			workers.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(courier.Config.DrainGrace):
			slog.Warn("Delivery drain grace expired, cancelling in-flight requests")
			cancel()
			<-done
		}
		cancel()
	})

	slog.Info("Webhook dispatcher started",
		"workers", courier.Config.DeliveryWorkers,
		"queue_size", courier.Config.DeliveryQueueSize,
	)
	return ds
}

func processDelivery(ctx context.Context, courier *Application, client *http.Client, task deliveryTask) {
	delivery := task.delivery
	if !task.claimed {
		claimed, err := courier.DB.ClaimWebhookDelivery(ctx, db.ClaimWebhookDeliveryParams{
			ID:            delivery.ID,
			LastAttemptAt: pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
		})
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				slog.Error("Failed to claim webhook delivery",
					"delivery_id", UuidToString(delivery.ID), "error", err)
			}
			// Someone else owns the row (or it is gone); nothing to do.
			return
		}
		delivery = claimed
	}

	// The subscription is loaded fresh for every attempt so that secret
	// rotation, URL changes, and deactivation apply to pending retries.
	sub, err := courier.DB.GetWebhookSubscription(ctx, delivery.SubscriptionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Subscription deleted; the delivery row cascades away with it.
			return
		}
		slog.Error("Failed to load subscription for delivery",
			"delivery_id", UuidToString(delivery.ID), "error", err)
		return
	}

	if !sub.Active {
		// Rejected before signing; the row keeps whatever signature the last
		// attempt stored.
		finishTerminal(courier, sub, delivery, delivery.Signature, "subscription is inactive", noResponseCode, 0)
		return
	}
	if int32(len(delivery.Payload)) > sub.MaxPayloadBytes {
		finishTerminal(courier, sub, delivery, delivery.Signature, "payload exceeds max_payload_bytes", noResponseCode, 0)
		return
	}

	signature := SignPayload(sub.Secret, delivery.Payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Url, bytes.NewReader(delivery.Payload))
	if err != nil {
		finishTerminal(courier, sub, delivery, signature, "building request: "+err.Error(), noResponseCode, 0)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", signature)
	req.Header.Set("X-Webhook-Event", delivery.EventType)
	req.Header.Set("X-Webhook-Delivery", UuidToString(delivery.ID))

	started := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(started)

	if err != nil {
		if ctx.Err() != nil {
			// Shutting down; the row stays in_flight until the reclaim
			// sweep returns it to pending.
			return
		}
		recordOutcome(courier, sub, delivery, signature, retriable, noResponseCode, latency, err.Error())
		return
	}
	resp.Body.Close()

	recordOutcome(courier, sub, delivery, signature, classifyStatus(resp.StatusCode), resp.StatusCode, latency, "")
}

type attemptClass int

const (
	success attemptClass = iota
	retriable
	terminal
)

// classifyStatus buckets an HTTP status code. Anything the receiver accepted
// (including redirects we refuse to follow further) counts as delivered;
// timeouts, throttling, and server errors are worth retrying; remaining 4xx
// responses mean the request itself is unacceptable and will never succeed.
func classifyStatus(code int) attemptClass {
	switch {
	case code >= 200 && code < 400:
		return success
	case code == http.StatusRequestTimeout,
		code == http.StatusTooEarly,
		code == http.StatusTooManyRequests,
		code >= 500:
		return retriable
	default:
		return terminal
	}
}

// backoffDelay computes the wait before the next attempt: the subscription's
// base delay doubled once per attempt already made, capped at one hour.
func backoffDelay(baseMs int32, attemptsMade int32) time.Duration {
	ms := int64(baseMs)
	for range attemptsMade {
		ms <<= 1
		if ms >= maxBackoffMs {
			ms = maxBackoffMs
			break
		}
	}
	return time.Duration(ms) * time.Millisecond
}

func recordOutcome(courier *Application, sub db.WebhookSubscription, delivery db.WebhookDelivery, signature string, class attemptClass, httpCode int, latency time.Duration, transportErr string) {
	// Outcome recording must survive shutdown cancellation; a delivered
	// webhook that is re-sent later violates nothing, but not recording a
	// recorded-able result wastes the receiver's time.
	ctx := context.Background()
	now := pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
	durationMs := int32(latency.Milliseconds())
	code := pgtype.Int4{Int32: int32(httpCode), Valid: true}

	attemptNumber := delivery.AttemptsMade + 1

	switch class {
	case success:
		_, err := courier.DB.MarkWebhookDeliverySucceeded(ctx, db.MarkWebhookDeliverySucceededParams{
			HttpCode:   code,
			SentAt:     now,
			Signature:  signature,
			DurationMs: durationMs,
			ID:         delivery.ID,
		})
		if err != nil {
			slog.Error("Failed to mark delivery succeeded",
				"delivery_id", UuidToString(delivery.ID), "error", err)
			return
		}
		bumpStats(ctx, courier, sub.ID, true, now, code, durationMs)
		publishAttempt(courier, sub, delivery, BusMessageAttempt, OutcomeSucceeded, attemptNumber, httpCode, durationMs, "")
		slog.Debug("Webhook delivered",
			"delivery_id", UuidToString(delivery.ID),
			"http_code", httpCode,
			"attempt", attemptNumber,
		)

	case retriable:
		lastError := transportErr
		if lastError == "" {
			lastError = "unexpected status " + http.StatusText(httpCode)
		}
		if sub.RetryEnabled && attemptNumber < delivery.MaxAttempts {
			delay := backoffDelay(sub.BackoffBaseMs, delivery.AttemptsMade)
			_, err := courier.DB.ScheduleWebhookDeliveryRetry(ctx, db.ScheduleWebhookDeliveryRetryParams{
				NextRetryAt: pgtype.Timestamptz{Time: now.Time.Add(delay), Valid: true},
				LastError:   lastError,
				HttpCode:    code,
				Signature:   signature,
				DurationMs:  durationMs,
				ID:          delivery.ID,
			})
			if err != nil {
				slog.Error("Failed to schedule delivery retry",
					"delivery_id", UuidToString(delivery.ID), "error", err)
				return
			}
			bumpStats(ctx, courier, sub.ID, false, now, code, durationMs)
			publishAttempt(courier, sub, delivery, BusMessageAttempt, OutcomeRetrying, attemptNumber, httpCode, durationMs, lastError)
			slog.Debug("Webhook attempt failed, retry scheduled",
				"delivery_id", UuidToString(delivery.ID),
				"http_code", httpCode,
				"attempt", attemptNumber,
				"retry_in", delay,
			)
			return
		}
		finishTerminal(courier, sub, delivery, signature, lastError, httpCode, durationMs)

	case terminal:
		finishTerminal(courier, sub, delivery, signature, "unexpected status "+http.StatusText(httpCode), httpCode, durationMs)
	}
}

// finishTerminal marks a delivery permanently failed, records the failure in
// the subscription stats, and announces exhaustion on the bus. The signature
// is the one sent on this attempt, so the persisted row always reflects the
// bytes the receiver last saw.
func finishTerminal(courier *Application, sub db.WebhookSubscription, delivery db.WebhookDelivery, signature string, lastError string, httpCode int, durationMs int32) {
	ctx := context.Background()
	now := pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
	code := pgtype.Int4{Int32: int32(httpCode), Valid: true}

	_, err := courier.DB.MarkWebhookDeliveryFailed(ctx, db.MarkWebhookDeliveryFailedParams{
		LastError:  lastError,
		HttpCode:   code,
		Signature:  signature,
		DurationMs: durationMs,
		ID:         delivery.ID,
	})
	if err != nil {
		slog.Error("Failed to mark delivery failed",
			"delivery_id", UuidToString(delivery.ID), "error", err)
		return
	}
	bumpStats(ctx, courier, sub.ID, false, now, code, durationMs)
	publishAttempt(courier, sub, delivery, BusMessageExhausted, OutcomeFailed, delivery.AttemptsMade+1, httpCode, durationMs, lastError)
	slog.Warn("Webhook delivery failed permanently",
		"delivery_id", UuidToString(delivery.ID),
		"subscription_id", UuidToString(sub.ID),
		"http_code", httpCode,
		"error", lastError,
	)
}

func bumpStats(ctx context.Context, courier *Application, subscriptionID pgtype.UUID, succeeded bool, calledAt pgtype.Timestamptz, code pgtype.Int4, durationMs int32) {
	err := courier.DB.IncrementWebhookSubscriptionStats(ctx, db.IncrementWebhookSubscriptionStatsParams{
		Succeeded:  succeeded,
		CalledAt:   calledAt,
		StatusCode: code,
		LatencyMs:  float64(durationMs),
		ID:         subscriptionID,
	})
	if err != nil {
		slog.Error("Failed to update subscription stats",
			"subscription_id", UuidToString(subscriptionID), "error", err)
	}
}

func publishAttempt(courier *Application, sub db.WebhookSubscription, delivery db.WebhookDelivery, msgType BusMessageType, outcome string, attemptNumber int32, httpCode int, durationMs int32, errMsg string) {
	courier.EventBus.Publish(BusMessage{
		Type:            msgType,
		SubscriptionID:  UuidToString(sub.ID),
		DeliveryID:      UuidToString(delivery.ID),
		TenantID:        delivery.TenantID,
		EventType:       delivery.EventType,
		AttemptNumber:   attemptNumber,
		Outcome:         outcome,
		HTTPCode:        httpCode,
		DurationMs:      int64(durationMs),
		Error:           errMsg,
		NotifyOnFailure: sub.NotifyOnFailure && msgType == BusMessageExhausted,
	})
}
