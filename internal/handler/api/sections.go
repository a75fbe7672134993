// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crewpage/crewpage-go/internal/model"
	"github.com/crewpage/crewpage-go/internal/service"
)

// CreateSectionRequest is the payload for POST /sections.
type CreateSectionRequest struct {
	Type     string          `json:"type"`
	Data     json.RawMessage `json:"data"`
	Position *int64          `json:"position,omitempty"`
	Enabled  *bool           `json:"enabled,omitempty"`
}

// CreateSection handles POST /api/v1/sections.
func (h *Handler) CreateSection(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}

	var req CreateSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	section, err := h.engine.CreateSection(r.Context(), companyID, service.CreateSectionInput{
		Type:     model.SectionType(req.Type),
		Data:     req.Data,
		Position: req.Position,
		Enabled:  req.Enabled,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteCreated(w, section)
}

// ListSections handles GET /api/v1/sections: the draft sections in display
// order.
func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}

	sections, err := h.engine.ListSections(r.Context(), companyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if sections == nil {
		sections = []model.Section{}
	}

	WriteSuccess(w, sections, &Meta{Total: int64(len(sections))})
}

// GetSection handles GET /api/v1/sections/{id}.
func (h *Handler) GetSection(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}

	section, err := h.engine.GetSection(r.Context(), companyID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, section, nil)
}

// UpdateSectionRequest is the partial patch payload for PATCH
// /sections/{id}. Absent fields are left unchanged.
type UpdateSectionRequest struct {
	Position *int64          `json:"position,omitempty"`
	Enabled  *bool           `json:"enabled,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// UpdateSection handles PATCH /api/v1/sections/{id}.
func (h *Handler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}

	var req UpdateSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	section, err := h.engine.UpdateSection(r.Context(), companyID, chi.URLParam(r, "id"), service.UpdateSectionInput{
		Position: req.Position,
		Enabled:  req.Enabled,
		Data:     req.Data,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, section, nil)
}

// DeleteSection handles DELETE /api/v1/sections/{id}.
func (h *Handler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}

	if err := h.engine.DeleteSection(r.Context(), companyID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]string{"message": "Section deleted"}, nil)
}

// ReorderRequest is the payload for POST /sections/reorder: section ids in
// their new display order.
type ReorderRequest struct {
	SectionIDs []string `json:"section_ids"`
}

// ReorderSections handles POST /api/v1/sections/reorder.
func (h *Handler) ReorderSections(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}

	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	if err := h.engine.Reorder(r.Context(), companyID, req.SectionIDs); err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]string{"message": "Sections reordered"}, nil)
}
