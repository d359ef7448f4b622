package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rifa-service/internal/auth"
	"rifa-service/internal/registration"
	"rifa-service/internal/utils"
)

// ListRegistrations returns every submission with its validated flag, newest
// first.
func (h *Handler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.Service.ListSubmissions(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListRegistrations: %v", err))
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to list registrations", err.Error()))
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("registrations", submissions))
}

// ValidateRegistration marks a submission's payment as confirmed and
// publishes the event that triggers code issuance.
func (h *Handler) ValidateRegistration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	operator := auth.Operator(r.Context())
	h.Logger.Info("API", fmt.Sprintf("ValidateRegistration: id=%s operator=%s", id, operator))

	if err := h.Service.Validate(r.Context(), id); err != nil {
		if errors.Is(err, registration.ErrSubmissionNotFound) {
			h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("submission not found", err.Error()))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("ValidateRegistration: %v", err))
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to validate submission", err.Error()))
		return
	}

	h.Logger.LogSubmission("VALIDATED", id, fmt.Sprintf("by operator %s", operator))
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("submission validated", nil))
}

// GetRegistrationCodes returns the raffle codes issued for a submission. An
// empty list means issuance has not run yet.
func (h *Handler) GetRegistrationCodes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	codes, err := h.Service.GetCodes(r.Context(), id)
	if err != nil {
		if errors.Is(err, registration.ErrSubmissionNotFound) {
			h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("submission not found", err.Error()))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("GetRegistrationCodes: %v", err))
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to load codes", err.Error()))
		return
	}

	values := make([]string, 0, len(codes))
	for _, c := range codes {
		values = append(values, c.Value)
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("issued codes", values))
}
