// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crewpage/crewpage-go/internal/cache"
	"github.com/crewpage/crewpage-go/internal/service"
)

// PublicHandler serves the unauthenticated read path: the published
// careers page document, cached by company slug.
type PublicHandler struct {
	engine    *service.VersioningService
	pageCache *cache.PageCache
}

// NewPublicHandler creates a public read handler. pageCache may be nil to
// serve uncached.
func NewPublicHandler(engine *service.VersioningService, pageCache *cache.PageCache) *PublicHandler {
	return &PublicHandler{
		engine:    engine,
		pageCache: pageCache,
	}
}

// CareersPage handles GET /careers/{slug}: the published JSON document for
// a company's careers page. Draft state never leaks through this endpoint;
// a page that has never been published is a 404.
func (h *PublicHandler) CareersPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if h.pageCache != nil {
		if body, err := h.pageCache.Get(r.Context(), slug); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			_, _ = w.Write(body)
			return
		}
	}

	doc, err := h.engine.PublishedPage(r.Context(), slug)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	body, err := json.Marshal(Response{Data: doc})
	if err != nil {
		WriteInternalError(w, "Internal server error")
		return
	}

	if h.pageCache != nil {
		if err := h.pageCache.Set(r.Context(), slug, body); err != nil {
			slog.Warn("failed to cache published page", "slug", slug, "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	_, _ = w.Write(body)
}
