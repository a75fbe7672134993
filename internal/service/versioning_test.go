// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/crewpage/crewpage-go/internal/cache"
	"github.com/crewpage/crewpage-go/internal/model"
	"github.com/crewpage/crewpage-go/internal/testutil"
)

// newTestEngine creates an engine over a fresh database with one company
// and its page already provisioned.
func newTestEngine(t *testing.T) (*VersioningService, model.Company, func()) {
	t.Helper()

	db, cleanup := testutil.TestDB(t)

	companies := NewCompanyService(db)
	company, _, err := companies.Create(context.Background(), "Acme Robotics", "")
	if err != nil {
		cleanup()
		t.Fatalf("Create company: %v", err)
	}

	return NewVersioningService(db), company, cleanup
}

func heroData(t *testing.T, title string) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(map[string]any{"title": title})
	if err != nil {
		t.Fatalf("marshal hero data: %v", err)
	}
	return data
}

// createHero adds a hero section with the given title.
func createHero(t *testing.T, svc *VersioningService, companyID, title string) model.Section {
	t.Helper()

	section, err := svc.CreateSection(context.Background(), companyID, CreateSectionInput{
		Type: model.SectionTypeHero,
		Data: heroData(t, title),
	})
	if err != nil {
		t.Fatalf("CreateSection: %v", err)
	}
	return section
}

func draftTitle(t *testing.T, sec model.Section) string {
	t.Helper()
	var payload struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(sec.Data, &payload); err != nil {
		t.Fatalf("unmarshal draft data: %v", err)
	}
	return payload.Title
}

func publishedTitle(t *testing.T, sec model.Section) string {
	t.Helper()
	if sec.PublishedData == nil {
		t.Fatal("section has no published snapshot")
	}
	var payload struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(sec.PublishedData, &payload); err != nil {
		t.Fatalf("unmarshal published data: %v", err)
	}
	return payload.Title
}

func TestCreateSection(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()

	section := createHero(t, svc, company.ID, "Join Us")
	if section.Type != model.SectionTypeHero {
		t.Errorf("Type = %q, want hero", section.Type)
	}
	if section.Position != 0 {
		t.Errorf("Position = %d, want 0 for first section", section.Position)
	}
	if !section.Enabled {
		t.Error("Enabled = false, want true by default")
	}
	if section.HasSnapshot() {
		t.Error("new section must not have a published snapshot")
	}

	// Position defaults to the current count: sections append at the end.
	second := createHero(t, svc, company.ID, "Second")
	if second.Position != 1 {
		t.Errorf("second section Position = %d, want 1", second.Position)
	}

	page, err := svc.GetPage(ctx, company.ID)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if !page.HasUnpublishedChanges {
		t.Error("page must be dirty after CreateSection")
	}
}

func TestCreateSectionValidation(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateSectionInput
		field string
	}{
		{
			name:  "unknown type",
			input: CreateSectionInput{Type: "gallery", Data: json.RawMessage(`{}`)},
			field: "type",
		},
		{
			name:  "missing required field",
			input: CreateSectionInput{Type: model.SectionTypeHero, Data: json.RawMessage(`{}`)},
			field: "title",
		},
		{
			name:  "wrong field type",
			input: CreateSectionInput{Type: model.SectionTypeHero, Data: json.RawMessage(`{"title": 42}`)},
			field: "title",
		},
		{
			name:  "unknown field",
			input: CreateSectionInput{Type: model.SectionTypeHero, Data: json.RawMessage(`{"title":"x","bogus":"y"}`)},
			field: "bogus",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSection(ctx, company.ID, tt.input)
			var verr *model.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("ValidationError fields = %v, want %q", verr.Fields, tt.field)
			}
		})
	}

	// Rejected payloads must not leave sections behind.
	sections, err := svc.ListSections(ctx, company.ID)
	if err != nil {
		t.Fatalf("ListSections: %v", err)
	}
	if len(sections) != 0 {
		t.Errorf("got %d sections after failed creates, want 0", len(sections))
	}
}

func TestCreateSectionUnknownCompany(t *testing.T) {
	svc, _, cleanup := newTestEngine(t)
	defer cleanup()

	_, err := svc.CreateSection(context.Background(), "no-such-company", CreateSectionInput{
		Type: model.SectionTypeHero,
		Data: heroData(t, "x"),
	})
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUpdateSection(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	section := createHero(t, svc, company.ID, "Join Us")

	// Publish so the snapshot exists, then patch the draft.
	if _, err := svc.Publish(ctx, company.ID); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	enabled := false
	position := int64(5)
	updated, err := svc.UpdateSection(ctx, company.ID, section.ID, UpdateSectionInput{
		Position: &position,
		Enabled:  &enabled,
		Data:     heroData(t, "New Title"),
	})
	if err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}

	if updated.Position != 5 {
		t.Errorf("Position = %d, want 5", updated.Position)
	}
	if updated.Enabled {
		t.Error("Enabled = true, want false")
	}
	if got := draftTitle(t, updated); got != "New Title" {
		t.Errorf("draft title = %q, want %q", got, "New Title")
	}

	// The published triple must be untouched by a draft patch.
	if got := publishedTitle(t, updated); got != "Join Us" {
		t.Errorf("published title = %q, want %q", got, "Join Us")
	}
	if !updated.PublishedEnabled.Valid || !updated.PublishedEnabled.Bool {
		t.Error("published enabled changed by draft patch")
	}
	if !updated.PublishedPosition.Valid || updated.PublishedPosition.Int64 != 0 {
		t.Errorf("published position = %v, want 0", updated.PublishedPosition)
	}
}

func TestUpdateSectionValidatesAgainstType(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	section := createHero(t, svc, company.ID, "Join Us")

	// The type is immutable, so the patch payload is validated against it.
	_, err := svc.UpdateSection(ctx, company.ID, section.ID, UpdateSectionInput{
		Data: json.RawMessage(`{"body":"<p>about text</p>"}`),
	})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}

func TestUpdateSectionWrongCompany(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	section := createHero(t, svc, company.ID, "Join Us")

	companies := NewCompanyService(svc.db)
	other, _, err := companies.Create(ctx, "Globex", "")
	if err != nil {
		t.Fatalf("Create company: %v", err)
	}

	// A section owned by another company reads as missing.
	_, err = svc.UpdateSection(ctx, other.ID, section.ID, UpdateSectionInput{
		Data: heroData(t, "Hijacked"),
	})
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}

	unchanged, err := svc.GetSection(ctx, company.ID, section.ID)
	if err != nil {
		t.Fatalf("GetSection: %v", err)
	}
	if got := draftTitle(t, unchanged); got != "Join Us" {
		t.Errorf("draft title = %q, want unchanged %q", got, "Join Us")
	}
}

func TestDeleteSection(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	section := createHero(t, svc, company.ID, "Join Us")

	if err := svc.DeleteSection(ctx, company.ID, section.ID); err != nil {
		t.Fatalf("DeleteSection: %v", err)
	}
	if _, err := svc.GetSection(ctx, company.ID, section.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("GetSection after delete = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteSection(ctx, company.ID, section.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestReorder(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	a := createHero(t, svc, company.ID, "A")
	b := createHero(t, svc, company.ID, "B")
	c := createHero(t, svc, company.ID, "C")

	if err := svc.Reorder(ctx, company.ID, []string{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	sections, err := svc.ListSections(ctx, company.ID)
	if err != nil {
		t.Fatalf("ListSections: %v", err)
	}
	wantOrder := []string{c.ID, a.ID, b.ID}
	for i, want := range wantOrder {
		if sections[i].ID != want {
			t.Errorf("sections[%d].ID = %s, want %s", i, sections[i].ID, want)
		}
		if sections[i].Position != int64(i) {
			t.Errorf("sections[%d].Position = %d, want %d", i, sections[i].Position, i)
		}
	}
}

func TestReorderForeignIDFailsWholeBatch(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	a := createHero(t, svc, company.ID, "A")
	b := createHero(t, svc, company.ID, "B")

	err := svc.Reorder(ctx, company.ID, []string{b.ID, "not-a-section", a.ID})
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Reorder = %v, want ErrNotFound", err)
	}

	// All-or-nothing: the valid ids before the bad one keep their positions.
	sections, err := svc.ListSections(ctx, company.ID)
	if err != nil {
		t.Fatalf("ListSections: %v", err)
	}
	if sections[0].ID != a.ID || sections[1].ID != b.ID {
		t.Errorf("order changed by failed reorder: %s, %s", sections[0].ID, sections[1].ID)
	}
}

func TestPublish(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	section := createHero(t, svc, company.ID, "Join Us")

	page, err := svc.Publish(ctx, company.ID)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !page.Published {
		t.Error("Published = false after Publish")
	}
	if page.HasUnpublishedChanges {
		t.Error("HasUnpublishedChanges = true after Publish")
	}
	if page.State() != model.PageStatePublishedClean {
		t.Errorf("State = %q, want published clean", page.State())
	}

	got, err := svc.GetSection(ctx, company.ID, section.ID)
	if err != nil {
		t.Fatalf("GetSection: %v", err)
	}
	if title := publishedTitle(t, got); title != "Join Us" {
		t.Errorf("published title = %q, want %q", title, "Join Us")
	}
}

func TestPublishUnknownCompany(t *testing.T) {
	svc, _, cleanup := newTestEngine(t)
	defer cleanup()

	if _, err := svc.Publish(context.Background(), "no-such-company"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Publish = %v, want ErrNotFound", err)
	}
}

// Dirty tracking: any mutation on a clean published page flips it dirty,
// and it stays dirty until the next Publish or Discard.
func TestDirtyTracking(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	section := createHero(t, svc, company.ID, "Join Us")

	mutations := []struct {
		name string
		call func() error
	}{
		{"create", func() error {
			_, err := svc.CreateSection(ctx, company.ID, CreateSectionInput{
				Type: model.SectionTypeJobList,
				Data: json.RawMessage(`{}`),
			})
			return err
		}},
		{"update", func() error {
			_, err := svc.UpdateSection(ctx, company.ID, section.ID, UpdateSectionInput{
				Data: heroData(t, "Changed"),
			})
			return err
		}},
		{"reorder", func() error {
			return svc.Reorder(ctx, company.ID, []string{section.ID})
		}},
	}

	for _, m := range mutations {
		t.Run(m.name, func(t *testing.T) {
			if _, err := svc.Publish(ctx, company.ID); err != nil {
				t.Fatalf("Publish: %v", err)
			}

			if err := m.call(); err != nil {
				t.Fatalf("%s: %v", m.name, err)
			}

			page, err := svc.GetPage(ctx, company.ID)
			if err != nil {
				t.Fatalf("GetPage: %v", err)
			}
			if !page.HasUnpublishedChanges {
				t.Errorf("page clean after %s, want dirty", m.name)
			}
			if page.State() != model.PageStatePublishedDirty {
				t.Errorf("State = %q, want published dirty", page.State())
			}

			// Further mutations keep it dirty.
			if err := m.call(); err != nil {
				t.Fatalf("repeat %s: %v", m.name, err)
			}
			page, err = svc.GetPage(ctx, company.ID)
			if err != nil {
				t.Fatalf("GetPage: %v", err)
			}
			if !page.HasUnpublishedChanges {
				t.Errorf("page clean after repeated %s, want dirty", m.name)
			}
		})
	}

	// An accepted no-op write still dirties the page.
	t.Run("no-op update", func(t *testing.T) {
		if _, err := svc.Publish(ctx, company.ID); err != nil {
			t.Fatalf("Publish: %v", err)
		}
		current, err := svc.GetSection(ctx, company.ID, section.ID)
		if err != nil {
			t.Fatalf("GetSection: %v", err)
		}
		if _, err := svc.UpdateSection(ctx, company.ID, section.ID, UpdateSectionInput{
			Data: current.Data,
		}); err != nil {
			t.Fatalf("UpdateSection: %v", err)
		}
		page, err := svc.GetPage(ctx, company.ID)
		if err != nil {
			t.Fatalf("GetPage: %v", err)
		}
		if !page.HasUnpublishedChanges {
			t.Error("page clean after no-op write, want dirty")
		}
	})
}

// Publishing twice with no draft changes in between leaves every published
// triple exactly as the first publish wrote it.
func TestPublishIdempotentOnSnapshot(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	createHero(t, svc, company.ID, "Join Us")
	createHero(t, svc, company.ID, "Second")

	if _, err := svc.Publish(ctx, company.ID); err != nil {
		t.Fatalf("first Publish: %v", err)
	}
	first, err := svc.ListSections(ctx, company.ID)
	if err != nil {
		t.Fatalf("ListSections: %v", err)
	}

	if _, err := svc.Publish(ctx, company.ID); err != nil {
		t.Fatalf("second Publish: %v", err)
	}
	second, err := svc.ListSections(ctx, company.ID)
	if err != nil {
		t.Fatalf("ListSections: %v", err)
	}

	for i := range first {
		if string(first[i].PublishedData) != string(second[i].PublishedData) {
			t.Errorf("section %s published data changed on republish", first[i].ID)
		}
		if first[i].PublishedPosition != second[i].PublishedPosition {
			t.Errorf("section %s published position changed on republish", first[i].ID)
		}
		if first[i].PublishedEnabled != second[i].PublishedEnabled {
			t.Errorf("section %s published enabled changed on republish", first[i].ID)
		}
	}
}

// Discard restores the draft exactly to the last published snapshot.
func TestDiscardRestoresSnapshot(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	section := createHero(t, svc, company.ID, "Join Us")
	if _, err := svc.Publish(ctx, company.ID); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if _, err := svc.UpdateSection(ctx, company.ID, section.ID, UpdateSectionInput{
		Data: heroData(t, "New Title"),
	}); err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}

	page, err := svc.Discard(ctx, company.ID)
	if err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if page.HasUnpublishedChanges {
		t.Error("HasUnpublishedChanges = true after Discard")
	}

	restored, err := svc.GetSection(ctx, company.ID, section.ID)
	if err != nil {
		t.Fatalf("GetSection: %v", err)
	}
	if got := draftTitle(t, restored); got != "Join Us" {
		t.Errorf("draft title = %q, want restored %q", got, "Join Us")
	}
}

// Sections created since the last publish have no snapshot to revert to;
// Discard deletes them.
func TestDiscardDeletesUnpublishedSections(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	kept := createHero(t, svc, company.ID, "Join Us")
	if _, err := svc.Publish(ctx, company.ID); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	orphan := createHero(t, svc, company.ID, "Orphan")

	if _, err := svc.Discard(ctx, company.ID); err != nil {
		t.Fatalf("Discard: %v", err)
	}

	if _, err := svc.GetSection(ctx, company.ID, orphan.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("orphan section survived Discard: %v", err)
	}
	if _, err := svc.GetSection(ctx, company.ID, kept.ID); err != nil {
		t.Errorf("snapshotted section deleted by Discard: %v", err)
	}
}

// Discard requires a published snapshot to revert to.
func TestDiscardRejectsUnpublished(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	section := createHero(t, svc, company.ID, "Join Us")

	_, err := svc.Discard(ctx, company.ID)
	if !errors.Is(err, model.ErrInvalidState) {
		t.Fatalf("Discard = %v, want ErrInvalidState", err)
	}

	// The rejected discard must not mutate anything.
	page, err := svc.GetPage(ctx, company.ID)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if page.Published || !page.HasUnpublishedChanges {
		t.Errorf("page flags changed by rejected Discard: published=%v dirty=%v",
			page.Published, page.HasUnpublishedChanges)
	}
	if _, err := svc.GetSection(ctx, company.ID, section.ID); err != nil {
		t.Errorf("section mutated by rejected Discard: %v", err)
	}
}

// Draft lifecycle, end to end: create on an unpublished page, publish,
// verify the snapshot.
func TestLifecyclePublishFirstDraft(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()

	page, err := svc.GetPage(ctx, company.ID)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if page.Published {
		t.Fatal("new page must start unpublished")
	}
	if page.State() != model.PageStateUnpublished {
		t.Fatalf("State = %q, want unpublished", page.State())
	}

	section := createHero(t, svc, company.ID, "Join Us")

	page, err = svc.Publish(ctx, company.ID)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !page.Published {
		t.Error("Published = false after Publish")
	}
	if page.HasUnpublishedChanges {
		t.Error("HasUnpublishedChanges = true after Publish")
	}

	got, err := svc.GetSection(ctx, company.ID, section.ID)
	if err != nil {
		t.Fatalf("GetSection: %v", err)
	}
	if title := publishedTitle(t, got); title != "Join Us" {
		t.Errorf("publishedData title = %q, want %q", title, "Join Us")
	}
}

// Edit after publish: the draft and the published snapshot diverge, and
// Discard brings the draft back.
func TestLifecycleEditThenDiscard(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	section := createHero(t, svc, company.ID, "Join Us")
	if _, err := svc.Publish(ctx, company.ID); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if _, err := svc.UpdateSection(ctx, company.ID, section.ID, UpdateSectionInput{
		Data: heroData(t, "New Title"),
	}); err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}

	page, err := svc.GetPage(ctx, company.ID)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if !page.HasUnpublishedChanges {
		t.Error("page clean after edit, want dirty")
	}

	diverged, err := svc.GetSection(ctx, company.ID, section.ID)
	if err != nil {
		t.Fatalf("GetSection: %v", err)
	}
	if got := draftTitle(t, diverged); got != "New Title" {
		t.Errorf("draft title = %q, want %q", got, "New Title")
	}
	if got := publishedTitle(t, diverged); got != "Join Us" {
		t.Errorf("published title = %q, want %q", got, "Join Us")
	}

	if _, err := svc.Discard(ctx, company.ID); err != nil {
		t.Fatalf("Discard: %v", err)
	}

	restored, err := svc.GetSection(ctx, company.ID, section.ID)
	if err != nil {
		t.Fatalf("GetSection: %v", err)
	}
	if got := draftTitle(t, restored); got != "Join Us" {
		t.Errorf("draft title after Discard = %q, want %q", got, "Join Us")
	}
	page, err = svc.GetPage(ctx, company.ID)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if page.HasUnpublishedChanges {
		t.Error("page dirty after Discard, want clean")
	}
}

// Deleting a published section is a hard delete: it disappears from draft
// reads immediately and no recovery path exists short of Discard.
func TestLifecycleDeletePublishedSection(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	section := createHero(t, svc, company.ID, "Join Us")
	if _, err := svc.Publish(ctx, company.ID); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if err := svc.DeleteSection(ctx, company.ID, section.ID); err != nil {
		t.Fatalf("DeleteSection: %v", err)
	}

	if _, err := svc.GetSection(ctx, company.ID, section.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("deleted section still readable: %v", err)
	}
	page, err := svc.GetPage(ctx, company.ID)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if !page.HasUnpublishedChanges {
		t.Error("page clean after delete, want dirty")
	}

	// Hard delete means the row is gone, snapshot and all; Discard cannot
	// resurrect it.
	if _, err := svc.Discard(ctx, company.ID); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if _, err := svc.GetSection(ctx, company.ID, section.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("hard-deleted section resurrected by Discard: %v", err)
	}
}

func TestPublishedPage(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()

	// Nothing published yet.
	if _, err := svc.PublishedPage(ctx, company.Slug); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("PublishedPage before publish = %v, want ErrNotFound", err)
	}

	visible := createHero(t, svc, company.ID, "Join Us")
	hidden := createHero(t, svc, company.ID, "Hidden")
	disabled := false
	if _, err := svc.UpdateSection(ctx, company.ID, hidden.ID, UpdateSectionInput{Enabled: &disabled}); err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}
	if _, err := svc.Publish(ctx, company.ID); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	doc, err := svc.PublishedPage(ctx, company.Slug)
	if err != nil {
		t.Fatalf("PublishedPage: %v", err)
	}
	if doc.Company.Slug != company.Slug {
		t.Errorf("Company.Slug = %q, want %q", doc.Company.Slug, company.Slug)
	}
	if len(doc.Sections) != 1 {
		t.Fatalf("got %d sections, want 1 (disabled excluded)", len(doc.Sections))
	}
	if doc.Sections[0].ID != visible.ID {
		t.Errorf("Sections[0].ID = %s, want %s", doc.Sections[0].ID, visible.ID)
	}

	// Draft edits stay invisible until the next publish.
	if _, err := svc.UpdateSection(ctx, company.ID, visible.ID, UpdateSectionInput{
		Data: heroData(t, "Unreleased"),
	}); err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}
	doc, err = svc.PublishedPage(ctx, company.Slug)
	if err != nil {
		t.Fatalf("PublishedPage: %v", err)
	}
	var payload struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(doc.Sections[0].Data, &payload); err != nil {
		t.Fatalf("unmarshal section data: %v", err)
	}
	if payload.Title != "Join Us" {
		t.Errorf("public title = %q, want published %q", payload.Title, "Join Us")
	}

	if _, err := svc.PublishedPage(ctx, "no-such-slug"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("PublishedPage unknown slug = %v, want ErrNotFound", err)
	}
}

func TestPublishInvalidatesPageCache(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	backend := cache.NewSimpleMemoryCache(time.Minute)
	defer backend.Close()
	pc := cache.NewPageCache(backend, time.Minute)
	svc.SetPageCache(pc)

	if err := pc.Set(ctx, company.Slug, []byte(`{"stale":true}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	createHero(t, svc, company.ID, "Join Us")
	if _, err := svc.Publish(ctx, company.ID); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if _, err := pc.Get(ctx, company.Slug); !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("cache entry survived Publish: %v", err)
	}
}

func TestUpdatePageMeta(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()

	title := "Careers at Acme"
	page, err := svc.UpdatePageMeta(ctx, company.ID, UpdatePageMetaInput{SeoTitle: &title})
	if err != nil {
		t.Fatalf("UpdatePageMeta: %v", err)
	}
	if page.SeoTitle != title {
		t.Errorf("SeoTitle = %q, want %q", page.SeoTitle, title)
	}

	past := time.Now().Add(-time.Hour)
	_, err = svc.UpdatePageMeta(ctx, company.ID, UpdatePageMetaInput{ScheduledAt: &past})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("past schedule error = %v, want ValidationError", err)
	}

	future := time.Now().Add(time.Hour)
	page, err = svc.UpdatePageMeta(ctx, company.ID, UpdatePageMetaInput{ScheduledAt: &future})
	if err != nil {
		t.Fatalf("UpdatePageMeta: %v", err)
	}
	if !page.IsScheduled() {
		t.Error("IsScheduled = false after setting schedule")
	}

	page, err = svc.UpdatePageMeta(ctx, company.ID, UpdatePageMetaInput{ClearSchedule: true})
	if err != nil {
		t.Fatalf("UpdatePageMeta: %v", err)
	}
	if page.IsScheduled() {
		t.Error("IsScheduled = true after clearing schedule")
	}
}

func TestPublishDue(t *testing.T) {
	svc, company, cleanup := newTestEngine(t)
	defer cleanup()

	ctx := context.Background()
	createHero(t, svc, company.ID, "Join Us")

	future := time.Now().Add(time.Hour)
	if _, err := svc.UpdatePageMeta(ctx, company.ID, UpdatePageMetaInput{ScheduledAt: &future}); err != nil {
		t.Fatalf("UpdatePageMeta: %v", err)
	}

	// Not due yet.
	n, err := svc.PublishDue(ctx, time.Now())
	if err != nil {
		t.Fatalf("PublishDue: %v", err)
	}
	if n != 0 {
		t.Errorf("published %d pages, want 0", n)
	}

	// Due once the clock passes the schedule.
	n, err = svc.PublishDue(ctx, future.Add(time.Minute))
	if err != nil {
		t.Fatalf("PublishDue: %v", err)
	}
	if n != 1 {
		t.Errorf("published %d pages, want 1", n)
	}

	page, err := svc.GetPage(ctx, company.ID)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if !page.Published {
		t.Error("page not published by PublishDue")
	}
	if page.IsScheduled() {
		t.Error("schedule not cleared by publish")
	}
}
