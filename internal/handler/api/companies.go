// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crewpage/crewpage-go/internal/model"
)

// CreateCompanyRequest is the payload for POST /companies.
type CreateCompanyRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// CreateCompanyResponse returns the provisioned company with its page.
type CreateCompanyResponse struct {
	Company model.Company `json:"company"`
	Page    PageResponse  `json:"page"`
}

// CreateCompany handles POST /api/v1/companies. Requires a service token;
// provisioning a company always provisions its unpublished careers page.
func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	company, page, err := h.companies.Create(r.Context(), req.Name, req.Slug)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteCreated(w, CreateCompanyResponse{
		Company: company,
		Page:    toPageResponse(page),
	})
}

// CreateTokenRequest is the payload for POST /companies/{id}/tokens.
type CreateTokenRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// CreateTokenResponse carries the raw key; it is shown exactly once and
// never stored.
type CreateTokenResponse struct {
	Token model.AccessToken `json:"token"`
	Key   string            `json:"key"`
}

// CreateToken handles POST /api/v1/companies/{id}/tokens.
func (h *Handler) CreateToken(w http.ResponseWriter, r *http.Request) {
	var req CreateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	token, rawKey, err := h.companies.IssueToken(r.Context(), chi.URLParam(r, "id"), req.Name, req.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteCreated(w, CreateTokenResponse{
		Token: token,
		Key:   rawKey,
	})
}
