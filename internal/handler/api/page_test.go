// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crewpage/crewpage-go/internal/model"
)

func TestGetPageHandler(t *testing.T) {
	_, h, company := testSetup(t)

	req := withToken(httptest.NewRequest(http.MethodGet, "/api/v1/page", nil), company.ID, model.RoleViewer)
	rec := httptest.NewRecorder()
	h.GetPage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var page PageResponse
	decodeData(t, rec.Body.Bytes(), &page)
	if page.Published {
		t.Error("new page reported as published")
	}
	if page.State != model.PageStateUnpublished {
		t.Errorf("State = %q, want unpublished", page.State)
	}
}

func TestUpdatePageHandlerPublish(t *testing.T) {
	db, h, company := testSetup(t)
	createTestSection(t, db, company.ID, "Join Us")

	req := withToken(newJSONRequest(t, http.MethodPatch, "/api/v1/page", `{"published":true}`, nil),
		company.ID, model.RoleEditor)
	rec := httptest.NewRecorder()
	h.UpdatePage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var page PageResponse
	decodeData(t, rec.Body.Bytes(), &page)
	if !page.Published {
		t.Error("Published = false after publish")
	}
	if page.HasUnpublishedChanges {
		t.Error("HasUnpublishedChanges = true after publish")
	}
	if page.State != model.PageStatePublishedClean {
		t.Errorf("State = %q, want published", page.State)
	}
}

func TestUpdatePageHandlerMeta(t *testing.T) {
	_, h, company := testSetup(t)

	body := `{"seo_title":"Careers at Acme","seo_description":"Build robots with us"}`
	req := withToken(newJSONRequest(t, http.MethodPatch, "/api/v1/page", body, nil),
		company.ID, model.RoleEditor)
	rec := httptest.NewRecorder()
	h.UpdatePage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var page PageResponse
	decodeData(t, rec.Body.Bytes(), &page)
	if page.SeoTitle != "Careers at Acme" {
		t.Errorf("SeoTitle = %q", page.SeoTitle)
	}
	// A metadata-only patch must not publish.
	if page.Published {
		t.Error("metadata patch published the page")
	}
}

func TestUpdatePageHandlerBadJSON(t *testing.T) {
	_, h, company := testSetup(t)

	req := withToken(newJSONRequest(t, http.MethodPatch, "/api/v1/page", `{"published":`, nil),
		company.ID, model.RoleEditor)
	rec := httptest.NewRecorder()
	h.UpdatePage(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDiscardPageHandler(t *testing.T) {
	db, h, company := testSetup(t)
	createTestSection(t, db, company.ID, "Join Us")
	publishPage(t, db, company.ID)
	createTestSection(t, db, company.ID, "Orphan")

	req := withToken(newJSONRequest(t, http.MethodPost, "/api/v1/page/discard", "", nil),
		company.ID, model.RoleEditor)
	rec := httptest.NewRecorder()
	h.DiscardPage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Message string       `json:"message"`
			Page    PageResponse `json:"page"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.Page.HasUnpublishedChanges {
		t.Error("page still dirty after discard")
	}
}

func TestDiscardPageHandlerUnpublished(t *testing.T) {
	_, h, company := testSetup(t)

	req := withToken(newJSONRequest(t, http.MethodPost, "/api/v1/page/discard", "", nil),
		company.ID, model.RoleEditor)
	rec := httptest.NewRecorder()
	h.DiscardPage(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if errResp.Error.Code != "invalid_state" {
		t.Errorf("error code = %q, want invalid_state", errResp.Error.Code)
	}
}

func TestDiscardPageHandlerUnknownCompany(t *testing.T) {
	_, h, _ := testSetup(t)

	req := withToken(newJSONRequest(t, http.MethodPost, "/api/v1/page/discard", "", nil),
		"ghost-company", model.RoleEditor)
	rec := httptest.NewRecorder()
	h.DiscardPage(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
