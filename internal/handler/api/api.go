// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST API handlers for editing and publishing
// careers pages.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crewpage/crewpage-go/internal/middleware"
	"github.com/crewpage/crewpage-go/internal/model"
	"github.com/crewpage/crewpage-go/internal/service"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db        *sql.DB
	engine    *service.VersioningService
	companies *service.CompanyService
}

// NewHandler creates a new API handler.
func NewHandler(db *sql.DB, engine *service.VersioningService, companies *service.CompanyService) *Handler {
	return &Handler{
		db:        db,
		engine:    engine,
		companies: companies,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains list metadata.
type Meta struct {
	Total int64 `json:"total,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteForbidden writes a 403 Forbidden response.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// writeServiceError maps a service-layer error to its HTTP response.
// Validation failures are 400 with per-field details, missing records 404,
// invalid lifecycle transitions 400 with a dedicated code, everything else
// 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteBadRequest(w, "Validation failed", verr.Fields)
	case errors.Is(err, model.ErrNotFound):
		WriteNotFound(w, "Not found")
	case errors.Is(err, model.ErrInvalidState):
		WriteError(w, http.StatusBadRequest, "invalid_state", err.Error(), nil)
	default:
		WriteInternalError(w, "Internal server error")
	}
}

// companyScope resolves the caller's company from the authenticated token.
// Service tokens carry no company scope and cannot use company-scoped
// endpoints.
func companyScope(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := middleware.GetAccessToken(r)
	if token == nil {
		WriteUnauthorized(w, "Not authenticated")
		return "", false
	}
	if token.IsServiceToken() {
		WriteForbidden(w, "A company-scoped token is required for this endpoint")
		return "", false
	}
	return token.CompanyID.String, true
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Status returns the API status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, StatusResponse{
		Status:  "ok",
		Version: "v1",
	}, nil)
}
