package handlers

import (
	"net/http"
	"net/url"
	"taskBoard/internal/handlers/dto"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.Service.Contacts()
	if err != nil {
		handleError(w, r, err, "get_contacts")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("contacts", contacts))
}

func (h *Handler) PostContact(w http.ResponseWriter, r *http.Request) {
	var request dto.ContactRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := h.Service.CreateContact(r.Context(), request.Input())
	if err != nil {
		handleError(w, r, err, "create_contact")
		return
	}
	responseWithJSON(w, http.StatusCreated, toPayload("contact", created))
}

func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	email := emailParam(r)

	var request dto.ContactRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := h.Service.UpdateContact(r.Context(), email, request.Input())
	if err != nil {
		handleError(w, r, err, "update_contact")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("contact", updated))
}

func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteContactByEmail(r.Context(), emailParam(r)); err != nil {
		handleError(w, r, err, "delete_contact")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func emailParam(r *http.Request) string {
	raw := chi.URLParam(r, "email")
	if email, err := url.PathUnescape(raw); err == nil {
		return email
	}
	return raw
}
