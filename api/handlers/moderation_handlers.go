package handlers

import (
	"errors"
	"net/http"

	"clipper-mock/core/auth"
	"clipper-mock/core/moderation"
	"clipper-mock/core/store"
	"clipper-mock/core/utils"
)

type ModerationHandler struct {
	svc    *moderation.Service
	logger *utils.Logger
}

func NewModerationHandler(svc *moderation.Service, logger *utils.Logger) *ModerationHandler {
	return &ModerationHandler{svc: svc, logger: logger}
}

func actorFromRequest(r *http.Request) moderation.Actor {
	p := auth.PrincipalFromContext(r.Context())
	if p == nil {
		return moderation.Actor{}
	}
	return moderation.Actor{ID: p.UserID, Username: p.Username, Role: p.Role}
}

func (h *ModerationHandler) ListModerators(w http.ResponseWriter, r *http.Request) {
	f := store.ModeratorFilter{
		ChannelID: r.URL.Query().Get("channel_id"),
		Limit:     queryInt(r, "limit", 50),
		Offset:    queryInt(r, "offset", 0),
	}
	mods, total, err := h.svc.ListModerators(r.Context(), f)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list moderators")
		return
	}
	writeJSON(w, http.StatusOK, ModeratorsResponse{
		Moderators: mods,
		Total:      total,
		Limit:      f.Limit,
		Offset:     f.Offset,
	})
}

func (h *ModerationHandler) CreateModerator(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID    string `json:"user_id"`
		ChannelID string `json:"channel_id"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.UserID == "" {
		writeFieldError(w, http.StatusBadRequest, "user_id is required", "user_id")
		return
	}
	mod, err := h.svc.AddModerator(r.Context(), actorFromRequest(r), payload.UserID, payload.ChannelID)
	if err != nil {
		switch {
		case errors.Is(err, moderation.ErrUserNotFound):
			WriteError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, moderation.ErrAlreadyModerator):
			WriteError(w, http.StatusConflict, "User is already a moderator")
		default:
			WriteError(w, http.StatusInternalServerError, "Failed to add moderator")
		}
		return
	}
	writeJSON(w, http.StatusCreated, ModeratorCreatedResponse{
		Success:   true,
		Moderator: mod,
		Message:   "Moderator added successfully",
	})
}

func (h *ModerationHandler) DeleteModerator(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if err := h.svc.RemoveModerator(r.Context(), actorFromRequest(r), id); err != nil {
		if errors.Is(err, moderation.ErrModeratorNotFound) {
			WriteError(w, http.StatusNotFound, "Moderator not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to remove moderator")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Success: true, Message: "Moderator removed successfully"})
}
