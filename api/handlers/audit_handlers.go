package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"clipper-mock/core/store"
	"clipper-mock/core/utils"
)

type AuditHandler struct {
	audit  store.AuditStore
	logger *utils.Logger
}

func NewAuditHandler(audit store.AuditStore, logger *utils.Logger) *AuditHandler {
	return &AuditHandler{audit: audit, logger: logger}
}

func auditFilterFromQuery(r *http.Request) store.AuditFilter {
	q := r.URL.Query()
	return store.AuditFilter{
		Action:       q.Get("action"),
		ResourceType: q.Get("resource_type"),
		ResourceID:   q.Get("resource_id"),
		ActorID:      q.Get("actor_id"),
		Limit:        queryInt(r, "limit", 50),
		Offset:       queryInt(r, "offset", 0),
	}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	f := auditFilterFromQuery(r)
	entries, total, err := h.audit.List(r.Context(), f)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list audit logs")
		return
	}
	writeJSON(w, http.StatusOK, AuditLogsResponse{
		Success: true,
		Data:    entries,
		Meta:    ListMeta{Total: total, Limit: f.Limit, Offset: f.Offset},
	})
}

// ExportCSV streams the filtered log as a CSV attachment.
func (h *AuditHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	f := auditFilterFromQuery(r)
	f.Limit = 0
	f.Offset = 0
	entries, _, err := h.audit.List(r.Context(), f)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to export audit logs")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=audit-log-%s.csv", time.Now().UTC().Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "created_at", "actor_id", "actor_username", "action", "resource_type", "resource_id", "reason", "details"})
	for _, e := range entries {
		_ = cw.Write([]string{
			e.ID,
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.ActorID,
			e.ActorUsername,
			e.Action,
			e.ResourceType,
			e.ResourceID,
			e.Reason,
			flattenDetails(e.Details),
		})
	}
	cw.Flush()
}

func flattenDetails(d map[string]string) string {
	if len(d) == 0 {
		return ""
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+d[k])
	}
	return strings.Join(parts, ";")
}
