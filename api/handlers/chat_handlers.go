package handlers

import (
	"errors"
	"net/http"
	"time"

	"clipper-mock/core/moderation"
	"clipper-mock/core/store"
	"clipper-mock/core/utils"
)

type ChatHandler struct {
	svc    *moderation.Service
	logger *utils.Logger
}

func NewChatHandler(svc *moderation.Service, logger *utils.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, logger: logger}
}

// ListBans returns bans newest first, optionally filtered by channel,
// user, or active state.
func (h *ChatHandler) ListBans(w http.ResponseWriter, r *http.Request) {
	f := store.BanFilter{
		ChannelID:  r.URL.Query().Get("channel_id"),
		UserID:     r.URL.Query().Get("user_id"),
		ActiveOnly: r.URL.Query().Get("active") == "true",
		Limit:      queryInt(r, "limit", 50),
		Offset:     queryInt(r, "offset", 0),
	}
	bans, total, err := h.svc.ListBans(r.Context(), f)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list bans")
		return
	}
	writeJSON(w, http.StatusOK, BansResponse{Bans: bans, Total: total, Limit: f.Limit, Offset: f.Offset})
}

// ChannelBans lists bans scoped to the channel in the path.
func (h *ChatHandler) ChannelBans(w http.ResponseWriter, r *http.Request) {
	f := store.BanFilter{
		ChannelID:  urlParam(r, "channel"),
		ActiveOnly: r.URL.Query().Get("active") == "true",
		Limit:      queryInt(r, "limit", 50),
		Offset:     queryInt(r, "offset", 0),
	}
	bans, total, err := h.svc.ListBans(r.Context(), f)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list bans")
		return
	}
	writeJSON(w, http.StatusOK, BansResponse{Bans: bans, Total: total, Limit: f.Limit, Offset: f.Offset})
}

func (h *ChatHandler) GetBan(w http.ResponseWriter, r *http.Request) {
	ban, err := h.svc.GetBan(r.Context(), urlParam(r, "id"))
	if err != nil {
		if errors.Is(err, moderation.ErrBanNotFound) {
			WriteError(w, http.StatusNotFound, "Ban not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to get ban")
		return
	}
	writeJSON(w, http.StatusOK, ban)
}

func (h *ChatHandler) CreateBan(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID    string     `json:"user_id"`
		ChannelID string     `json:"channel_id"`
		Reason    string     `json:"reason"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.UserID == "" {
		writeFieldError(w, http.StatusBadRequest, "user_id is required", "user_id")
		return
	}
	ban, err := h.svc.CreateBan(r.Context(), actorFromRequest(r), moderation.CreateBanInput{
		UserID:    payload.UserID,
		ChannelID: payload.ChannelID,
		Reason:    payload.Reason,
		ExpiresAt: payload.ExpiresAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, moderation.ErrUserNotFound):
			WriteError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, moderation.ErrAlreadyBanned):
			WriteError(w, http.StatusConflict, "User is already banned in this channel")
		default:
			WriteError(w, http.StatusInternalServerError, "Failed to create ban")
		}
		return
	}
	writeJSON(w, http.StatusCreated, ban)
}

func (h *ChatHandler) DeleteBan(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Reason string `json:"reason"`
	}
	// Body is optional for an unban.
	_ = decodeJSON(r, &payload)
	ban, err := h.svc.RevokeBan(r.Context(), actorFromRequest(r), urlParam(r, "id"), payload.Reason)
	if err != nil {
		switch {
		case errors.Is(err, moderation.ErrBanNotFound):
			WriteError(w, http.StatusNotFound, "Ban not found")
		case errors.Is(err, moderation.ErrBanInactive):
			WriteError(w, http.StatusConflict, "Ban is not active")
		default:
			WriteError(w, http.StatusInternalServerError, "Failed to revoke ban")
		}
		return
	}
	writeJSON(w, http.StatusOK, ban)
}

// SyncBans kicks a ban import for the channel. The mock import runs
// inline but the response keeps the platform's async wire shape.
func (h *ChatHandler) SyncBans(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.SyncBans(r.Context(), actorFromRequest(r), urlParam(r, "channel"))
	if err != nil {
		if errors.Is(err, moderation.ErrInvalidChannel) {
			WriteError(w, http.StatusBadRequest, "Invalid channel name")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to start ban sync")
		return
	}
	writeJSON(w, http.StatusOK, SyncStartedResponse{
		Status:  "syncing",
		JobID:   job.ID,
		Message: "Ban sync started",
	})
}

func (h *ChatHandler) GetSyncJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.GetSyncJob(r.Context(), urlParam(r, "id"))
	if err != nil {
		if errors.Is(err, moderation.ErrJobNotFound) {
			WriteError(w, http.StatusNotFound, "Sync job not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to get sync job")
		return
	}
	bans := make([]*store.Ban, 0, len(job.BanIDs))
	for _, id := range job.BanIDs {
		ban, err := h.svc.GetBan(r.Context(), id)
		if err != nil {
			continue
		}
		bans = append(bans, ban)
	}
	writeJSON(w, http.StatusOK, SyncJobResponse{Job: job, Bans: bans})
}
