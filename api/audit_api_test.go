package api

import (
	"context"
	"encoding/csv"
	"net/http"
	"testing"

	"clipper-mock/core/bootstrap"
	"clipper-mock/core/browsing"
	"clipper-mock/core/store"
)

func TestAuditLogListAndFilters(t *testing.T) {
	env := newTestEnv(t)
	admin := newBrowser(t, env)
	loginAs(t, env, admin, bootstrap.AdminUsername)

	resp, err := admin.NewPage().Get(context.Background(), "/api/v1/admin/audit-logs")
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Success bool                `json:"success"`
		Data    []*store.AuditEntry `json:"data"`
		Meta    struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if err := browsing.DecodeJSON(resp, &out); err != nil {
		t.Fatal(err)
	}
	if !out.Success || out.Meta.Total < 2 {
		t.Fatalf("expected seeded history, got %+v", out.Meta)
	}

	filtered, err := admin.NewPage().Get(context.Background(), "/api/v1/admin/audit-logs?action=ban_user")
	if err != nil {
		t.Fatal(err)
	}
	if err := browsing.DecodeJSON(filtered, &out); err != nil {
		t.Fatal(err)
	}
	for _, e := range out.Data {
		if e.Action != "ban_user" {
			t.Fatalf("filter leaked action %q", e.Action)
		}
	}
	if out.Meta.Total != 1 {
		t.Fatalf("ban_user total = %d", out.Meta.Total)
	}
}

func TestAuditLogExportCSV(t *testing.T) {
	env := newTestEnv(t)
	admin := newBrowser(t, env)
	loginAs(t, env, admin, bootstrap.AdminUsername)

	resp, err := admin.NewPage().Get(context.Background(), "/api/v1/admin/audit-logs/export")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Fatalf("content type %q", ct)
	}
	records, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	total, err := env.st.Audit.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != total+1 {
		t.Fatalf("rows = %d, want header + %d", len(records), total)
	}
	if records[0][0] != "id" || records[0][4] != "action" {
		t.Fatalf("header %v", records[0])
	}
}

func TestAuditLogRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	mod := newBrowser(t, env)
	loginAs(t, env, mod, bootstrap.ModeratorUsername)

	for _, path := range []string{"/api/v1/admin/audit-logs", "/api/v1/admin/audit-logs/export"} {
		resp, err := mod.NewPage().Get(context.Background(), path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s: status %d", path, resp.StatusCode)
		}
	}
}
