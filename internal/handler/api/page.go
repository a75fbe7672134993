// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/crewpage/crewpage-go/internal/model"
	"github.com/crewpage/crewpage-go/internal/service"
)

// PageResponse is the page shape returned by the API, with the lifecycle
// state spelled out and the schedule exposed as a nullable timestamp.
type PageResponse struct {
	ID                    string     `json:"id"`
	CompanyID             string     `json:"company_id"`
	Published             bool       `json:"published"`
	HasUnpublishedChanges bool       `json:"has_unpublished_changes"`
	State                 string     `json:"state"`
	SeoTitle              string     `json:"seo_title,omitempty"`
	SeoDescription        string     `json:"seo_description,omitempty"`
	ScheduledAt           *time.Time `json:"scheduled_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func toPageResponse(p model.Page) PageResponse {
	resp := PageResponse{
		ID:                    p.ID,
		CompanyID:             p.CompanyID,
		Published:             p.Published,
		HasUnpublishedChanges: p.HasUnpublishedChanges,
		State:                 p.State(),
		SeoTitle:              p.SeoTitle,
		SeoDescription:        p.SeoDescription,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
	if p.ScheduledAt.Valid {
		t := p.ScheduledAt.Time
		resp.ScheduledAt = &t
	}
	return resp
}

// GetPage handles GET /api/v1/page.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}

	page, err := h.engine.GetPage(r.Context(), companyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, toPageResponse(page), nil)
}

// UpdatePageRequest is the partial patch payload for PATCH /page. Setting
// published to true triggers Publish semantics; the other fields patch the
// page's display metadata and publish schedule.
type UpdatePageRequest struct {
	Published      *bool      `json:"published,omitempty"`
	SeoTitle       *string    `json:"seo_title,omitempty"`
	SeoDescription *string    `json:"seo_description,omitempty"`
	ScheduledAt    *time.Time `json:"scheduled_at,omitempty"`
	ClearSchedule  bool       `json:"clear_schedule,omitempty"`
}

// UpdatePage handles PATCH /api/v1/page.
func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}

	var req UpdatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	if req.SeoTitle != nil || req.SeoDescription != nil || req.ScheduledAt != nil || req.ClearSchedule {
		if _, err := h.engine.UpdatePageMeta(r.Context(), companyID, service.UpdatePageMetaInput{
			SeoTitle:       req.SeoTitle,
			SeoDescription: req.SeoDescription,
			ScheduledAt:    req.ScheduledAt,
			ClearSchedule:  req.ClearSchedule,
		}); err != nil {
			writeServiceError(w, err)
			return
		}
	}

	if req.Published != nil && *req.Published {
		page, err := h.engine.Publish(r.Context(), companyID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteSuccess(w, toPageResponse(page), nil)
		return
	}

	page, err := h.engine.GetPage(r.Context(), companyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, toPageResponse(page), nil)
}

// DiscardPage handles POST /api/v1/page/discard.
func (h *Handler) DiscardPage(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}

	page, err := h.engine.Discard(r.Context(), companyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{
		"message": "Draft changes discarded",
		"page":    toPageResponse(page),
	}, nil)
}
