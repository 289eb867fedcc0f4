package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sweater-ventures/courier/app"
	"github.com/sweater-ventures/courier/db"
	"github.com/sweater-ventures/courier/middleware"
)

func init() {
	registerRoute(func(courier *app.Application, router *http.ServeMux) {
		router.Handle("POST /webhooks", routeHandler(courier, createWebhookHandler))
		router.Handle("GET /webhooks", routeHandler(courier, listWebhooksHandler))
		router.Handle("GET /webhooks/{id}", routeHandler(courier, getWebhookHandler))
		router.Handle("PUT /webhooks/{id}", routeHandler(courier, updateWebhookHandler))
		router.Handle("DELETE /webhooks/{id}", routeHandler(courier, deleteWebhookHandler))
		router.Handle("POST /webhooks/{id}/rotate-secret", routeHandler(courier, rotateSecretHandler))
		router.Handle("POST /webhooks/{id}/test", routeHandler(courier, testWebhookHandler))
		router.Handle("GET /webhooks/{id}/events", routeHandler(courier, listWebhookEventsHandler))
		router.Handle("GET /webhooks/{id}/stats", routeHandler(courier, webhookStatsHandler))
	})
}

type WebhookRequest struct {
	URL             string   `json:"url"`
	Name            string   `json:"name"`
	Description     *string  `json:"description"`
	Events          []string `json:"events"`
	Active          *bool    `json:"active"`
	RetryEnabled    *bool    `json:"retry_enabled"`
	NotifyOnFailure *bool    `json:"notify_on_failure"`
	MaxAttempts     *int32   `json:"max_attempts"`
	BackoffBaseMs   *int32   `json:"backoff_base_ms"`
	MaxPayloadBytes *int32   `json:"max_payload_bytes"`
}

type WebhookResponse struct {
	Success         bool       `json:"success,omitempty"`
	ID              string     `json:"id"`
	URL             string     `json:"url"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Events          []string   `json:"events"`
	Secret          string     `json:"secret,omitempty"`
	Active          bool       `json:"active"`
	RetryEnabled    bool       `json:"retry_enabled"`
	NotifyOnFailure bool       `json:"notify_on_failure"`
	MaxAttempts     int32      `json:"max_attempts"`
	BackoffBaseMs   int32      `json:"backoff_base_ms"`
	MaxPayloadBytes int32      `json:"max_payload_bytes"`
	TotalCalls      int64      `json:"total_calls"`
	SuccessCalls    int64      `json:"success_calls"`
	FailureCalls    int64      `json:"failure_calls"`
	LastCallAt      *time.Time `json:"last_call_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type WebhookListResponse struct {
	Success  bool              `json:"success"`
	Webhooks []WebhookResponse `json:"webhooks"`
	HasMore  bool              `json:"has_more"`
}

// webhookToResponse renders a subscription row. The secret only appears on
// create, single get, and rotation; list responses never carry it.
func webhookToResponse(s db.WebhookSubscription, includeSecret bool) WebhookResponse {
	resp := WebhookResponse{
		ID:              app.UuidToString(s.ID),
		URL:             s.Url,
		Name:            s.Name,
		Description:     s.Description,
		Events:          s.EventMask,
		Active:          s.Active,
		RetryEnabled:    s.RetryEnabled,
		NotifyOnFailure: s.NotifyOnFailure,
		MaxAttempts:     s.MaxAttempts,
		BackoffBaseMs:   s.BackoffBaseMs,
		MaxPayloadBytes: s.MaxPayloadBytes,
		TotalCalls:      s.TotalCalls,
		SuccessCalls:    s.SuccessCalls,
		FailureCalls:    s.FailureCalls,
		CreatedAt:       s.CreatedAt.Time,
		UpdatedAt:       s.UpdatedAt.Time,
	}
	if includeSecret {
		resp.Secret = s.Secret
	}
	if s.LastCallAt.Valid {
		t := s.LastCallAt.Time
		resp.LastCallAt = &t
	}
	return resp
}

// webhookBody is webhookToResponse plus the top-level success flag. Entries
// nested inside a list body leave the flag unset.
func webhookBody(s db.WebhookSubscription, includeSecret bool) WebhookResponse {
	resp := webhookToResponse(s, includeSecret)
	resp.Success = true
	return resp
}

func pathSubscriptionID(r *http.Request) (pgtype.UUID, bool) {
	parsed, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return pgtype.UUID{}, false
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, true
}

// parsePageParams reads limit/offset query parameters. Limit defaults to 20
// and is clamped to [1, 200].
func parsePageParams(r *http.Request) (int32, int32) {
	limit := int32(20)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = min(max(int32(v), 1), 200)
		}
	}
	offset := int32(0)
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			offset = int32(v)
		}
	}
	return limit, offset
}

func createWebhookHandler(courier *app.Application, w http.ResponseWriter, r *http.Request) {
	var req WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	description := ""
	if req.Description != nil {
		description = *req.Description
	}
	sub, err := app.CreateSubscription(r.Context(), courier, middleware.TenantFromContext(r.Context()), app.SubscriptionSpec{
		URL:             req.URL,
		Name:            req.Name,
		Description:     description,
		Events:          req.Events,
		MaxAttempts:     req.MaxAttempts,
		BackoffBaseMs:   req.BackoffBaseMs,
		MaxPayloadBytes: req.MaxPayloadBytes,
		RetryEnabled:    req.RetryEnabled,
		NotifyOnFailure: req.NotifyOnFailure,
	})
	if err != nil {
		writeAppError(r.Context(), w, err)
		return
	}

	writeJsonResponse(w, http.StatusCreated, webhookBody(sub, true))
}

func listWebhooksHandler(courier *app.Application, w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePageParams(r)

	var active *bool
	if raw := r.URL.Query().Get("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "active must be true or false")
			return
		}
		active = &v
	}

	subs, hasMore, err := app.ListSubscriptions(r.Context(), courier, middleware.TenantFromContext(r.Context()), active, limit, offset)
	if err != nil {
		writeAppError(r.Context(), w, err)
		return
	}

	webhooks := make([]WebhookResponse, 0, len(subs))
	for _, sub := range subs {
		webhooks = append(webhooks, webhookToResponse(sub, false))
	}
	writeJsonResponse(w, http.StatusOK, WebhookListResponse{Success: true, Webhooks: webhooks, HasMore: hasMore})
}

func getWebhookHandler(courier *app.Application, w http.ResponseWriter, r *http.Request) {
	id, ok := pathSubscriptionID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	sub, err := app.GetSubscription(r.Context(), courier, middleware.TenantFromContext(r.Context()), id)
	if err != nil {
		writeAppError(r.Context(), w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, webhookBody(sub, true))
}

func updateWebhookHandler(courier *app.Application, w http.ResponseWriter, r *http.Request) {
	id, ok := pathSubscriptionID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	var req WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// A present "description" always applies, so an explicit empty string
	// clears it. URL and name may not be blank, so empty means unchanged.
	patch := app.SubscriptionPatch{
		Description:     req.Description,
		Events:          req.Events,
		Active:          req.Active,
		RetryEnabled:    req.RetryEnabled,
		NotifyOnFailure: req.NotifyOnFailure,
		MaxAttempts:     req.MaxAttempts,
		BackoffBaseMs:   req.BackoffBaseMs,
		MaxPayloadBytes: req.MaxPayloadBytes,
	}
	if req.URL != "" {
		patch.URL = &req.URL
	}
	if req.Name != "" {
		patch.Name = &req.Name
	}

	sub, err := app.UpdateSubscription(r.Context(), courier, middleware.TenantFromContext(r.Context()), id, patch)
	if err != nil {
		writeAppError(r.Context(), w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, webhookBody(sub, false))
}

func deleteWebhookHandler(courier *app.Application, w http.ResponseWriter, r *http.Request) {
	id, ok := pathSubscriptionID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	if err := app.DeleteSubscription(r.Context(), courier, middleware.TenantFromContext(r.Context()), id); err != nil {
		writeAppError(r.Context(), w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, WebhookDeleteResponse{Success: true, ID: app.UuidToString(id)})
}

func rotateSecretHandler(courier *app.Application, w http.ResponseWriter, r *http.Request) {
	id, ok := pathSubscriptionID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	sub, err := app.RotateSecret(r.Context(), courier, middleware.TenantFromContext(r.Context()), id)
	if err != nil {
		writeAppError(r.Context(), w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, webhookBody(sub, true))
}

type WebhookDeleteResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// WebhookTestResponse wraps the probe outcome in the standard response
// envelope. Success reports that the probe ran; Ok reports what the
// receiver answered.
type WebhookTestResponse struct {
	Success bool `json:"success"`
	app.ProbeResult
}

func testWebhookHandler(courier *app.Application, w http.ResponseWriter, r *http.Request) {
	id, ok := pathSubscriptionID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	result, err := app.TestProbe(r.Context(), courier, middleware.TenantFromContext(r.Context()), id)
	if err != nil {
		writeAppError(r.Context(), w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, WebhookTestResponse{Success: true, ProbeResult: result})
}

type DeliveryResponse struct {
	ID                string          `json:"id"`
	EventType         string          `json:"event_type"`
	SourceEventID     string          `json:"source_event_id,omitempty"`
	Payload           json.RawMessage `json:"payload"`
	Status            string          `json:"status"`
	AttemptsMade      int32           `json:"attempts_made"`
	MaxAttempts       int32           `json:"max_attempts"`
	NextRetryAt       *time.Time      `json:"next_retry_at,omitempty"`
	LastError         string          `json:"last_error,omitempty"`
	LastHTTPCode      *int32          `json:"last_http_code,omitempty"`
	RequestDurationMs int32           `json:"request_duration_ms"`
	CreatedAt         time.Time       `json:"created_at"`
	SentAt            *time.Time      `json:"sent_at,omitempty"`
}

type DeliveryListResponse struct {
	Success    bool               `json:"success"`
	Deliveries []DeliveryResponse `json:"deliveries"`
	HasMore    bool               `json:"has_more"`
}

func deliveryToResponse(d db.WebhookDelivery) DeliveryResponse {
	resp := DeliveryResponse{
		ID:                app.UuidToString(d.ID),
		EventType:         d.EventType,
		Payload:           json.RawMessage(d.Payload),
		Status:            d.Status,
		AttemptsMade:      d.AttemptsMade,
		MaxAttempts:       d.MaxAttempts,
		LastError:         d.LastError,
		RequestDurationMs: d.RequestDurationMs,
		CreatedAt:         d.CreatedAt.Time,
	}
	if d.SourceEventID.Valid {
		resp.SourceEventID = d.SourceEventID.String
	}
	if d.NextRetryAt.Valid {
		t := d.NextRetryAt.Time
		resp.NextRetryAt = &t
	}
	if d.LastHttpCode.Valid {
		v := d.LastHttpCode.Int32
		resp.LastHTTPCode = &v
	}
	if d.SentAt.Valid {
		t := d.SentAt.Time
		resp.SentAt = &t
	}
	return resp
}

func listWebhookEventsHandler(courier *app.Application, w http.ResponseWriter, r *http.Request) {
	id, ok := pathSubscriptionID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	// Tenant check happens before any delivery row is touched.
	if _, err := app.GetSubscription(r.Context(), courier, middleware.TenantFromContext(r.Context()), id); err != nil {
		writeAppError(r.Context(), w, err)
		return
	}

	limit, offset := parsePageParams(r)
	query := r.URL.Query()

	params := db.ListWebhookDeliveriesForSubscriptionParams{
		SubscriptionID:  id,
		StatusFilter:    query.Get("status"),
		EventTypeFilter: query.Get("event_type"),
		RowLimit:        limit + 1,
		RowOffset:       offset,
	}
	if raw := query.Get("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start must be an RFC3339 timestamp")
			return
		}
		params.HasStart = true
		params.StartTime = pgtype.Timestamptz{Time: t, Valid: true}
	}
	if raw := query.Get("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "end must be an RFC3339 timestamp")
			return
		}
		params.HasEnd = true
		params.EndTime = pgtype.Timestamptz{Time: t, Valid: true}
	}

	rows, err := courier.DB.ListWebhookDeliveriesForSubscription(r.Context(), params)
	if err != nil {
		writeAppError(r.Context(), w, err)
		return
	}

	hasMore := false
	if int32(len(rows)) > limit {
		hasMore = true
		rows = rows[:limit]
	}
	deliveries := make([]DeliveryResponse, 0, len(rows))
	for _, row := range rows {
		deliveries = append(deliveries, deliveryToResponse(row))
	}
	writeJsonResponse(w, http.StatusOK, DeliveryListResponse{Success: true, Deliveries: deliveries, HasMore: hasMore})
}

type WebhookStatsResponse struct {
	Success       bool               `json:"success"`
	TotalCalls    int64              `json:"total_calls"`
	SuccessCalls  int64              `json:"success_calls"`
	FailureCalls  int64              `json:"failure_calls"`
	AvgResponseMs float64            `json:"avg_response_ms"`
	LastCallAt    *time.Time         `json:"last_call_at,omitempty"`
	LastStatus    *int32             `json:"last_status_code,omitempty"`
	ByStatus      map[string]int64   `json:"by_status"`
	ByEventType   map[string]int64   `json:"by_event_type"`
	Recent        []DeliveryResponse `json:"recent_deliveries"`
}

const recentDeliveryCount = 10

func webhookStatsHandler(courier *app.Application, w http.ResponseWriter, r *http.Request) {
	id, ok := pathSubscriptionID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	sub, err := app.GetSubscription(r.Context(), courier, middleware.TenantFromContext(r.Context()), id)
	if err != nil {
		writeAppError(r.Context(), w, err)
		return
	}

	byStatus, err := courier.DB.CountWebhookDeliveriesByStatus(r.Context(), id)
	if err != nil {
		writeAppError(r.Context(), w, err)
		return
	}
	byEventType, err := courier.DB.CountWebhookDeliveriesByEventType(r.Context(), id)
	if err != nil {
		writeAppError(r.Context(), w, err)
		return
	}
	recent, err := courier.DB.ListRecentWebhookDeliveries(r.Context(), db.ListRecentWebhookDeliveriesParams{
		SubscriptionID: id,
		Limit:          recentDeliveryCount,
	})
	if err != nil {
		writeAppError(r.Context(), w, err)
		return
	}

	resp := WebhookStatsResponse{
		Success:       true,
		TotalCalls:    sub.TotalCalls,
		SuccessCalls:  sub.SuccessCalls,
		FailureCalls:  sub.FailureCalls,
		AvgResponseMs: sub.AvgResponseMs,
		ByStatus:      make(map[string]int64, len(byStatus)),
		ByEventType:   make(map[string]int64, len(byEventType)),
		Recent:        make([]DeliveryResponse, 0, len(recent)),
	}
	if sub.LastCallAt.Valid {
		t := sub.LastCallAt.Time
		resp.LastCallAt = &t
	}
	if sub.LastStatusCode.Valid {
		v := sub.LastStatusCode.Int32
		resp.LastStatus = &v
	}
	for _, row := range byStatus {
		resp.ByStatus[row.Status] = row.Count
	}
	for _, row := range byEventType {
		resp.ByEventType[row.EventType] = row.Count
	}
	for _, row := range recent {
		resp.Recent = append(resp.Recent, deliveryToResponse(row))
	}
	writeJsonResponse(w, http.StatusOK, resp)
}
