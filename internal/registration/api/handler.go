package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"rifa-service/internal/logger"
	"rifa-service/internal/models"
	"rifa-service/internal/registration"
	"rifa-service/internal/utils"
)

// Multipart form field names for the intake endpoint.
const (
	fieldBuyerName   = "buyer_name"
	fieldEmail       = "email"
	fieldPhone       = "phone"
	fieldReference   = "reference_number"
	fieldTicketCount = "ticket_count"
	fieldTerms       = "terms_accepted"
	fieldProof       = "proof"
)

// formParseOverhead is the slack on top of the proof-file ceiling allowed for
// the text fields and multipart framing of an intake request.
const formParseOverhead = 1 << 20

type Handler struct {
	Service           *registration.Service
	Logger            *logger.Logger
	MinTickets        int
	MaxProofFileBytes int64
}

func NewHandler(service *registration.Service, log *logger.Logger, minTickets int, maxProofFileBytes int64) *Handler {
	return &Handler{
		Service:           service,
		Logger:            log,
		MinTickets:        minTickets,
		MaxProofFileBytes: maxProofFileBytes,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}

// GetPaymentMethods serves the static payment-method catalog with each
// method's account disclosure.
func (h *Handler) GetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	type methodWithDetail struct {
		models.PaymentMethod
		AccountDetail models.AccountDetail `json:"account_detail"`
		UnitPrice     float64              `json:"unit_price"`
	}

	out := make([]methodWithDetail, 0, len(models.PaymentMethods))
	for _, m := range models.PaymentMethods {
		out = append(out, methodWithDetail{
			PaymentMethod: m,
			AccountDetail: models.AccountDetails[m.ID],
			UnitPrice:     models.TicketPrices[m.Currency],
		})
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("payment methods", out))
}

func (h *Handler) GetTicketPresets(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("ticket presets", models.TicketPresets))
}

type quoteRequest struct {
	MethodID models.PaymentMethodID `json:"method_id"`
	Presets  []int                  `json:"presets"`
	Custom   *string                `json:"custom"`
}

type quoteResponse struct {
	MethodID       models.PaymentMethodID `json:"method_id"`
	Currency       models.Currency        `json:"currency"`
	Count          int                    `json:"count"`
	UnitPrice      float64                `json:"unit_price"`
	Total          float64                `json:"total"`
	FormattedTotal string                 `json:"formatted_total"`
	Eligible       bool                   `json:"eligible"`
	MinTickets     int                    `json:"min_tickets"`
}

// Quote recomputes the form's ticket count and total server-side: presets
// accumulate in order, then an optional custom text replaces the count.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid quote request", err.Error()))
		return
	}

	q := registration.NewQuote(h.MinTickets)
	if req.MethodID != "" {
		if ok := q.SelectMethod(req.MethodID); !ok {
			h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid quote request",
				fmt.Sprintf("unknown payment method %q", req.MethodID)))
			return
		}
	}
	for _, p := range req.Presets {
		q.AddPreset(p)
	}
	if req.Custom != nil {
		q.SetCustom(*req.Custom)
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("quote", quoteResponse{
		MethodID:       q.Method().ID,
		Currency:       q.Method().Currency,
		Count:          q.Count(),
		UnitPrice:      q.UnitPrice(),
		Total:          q.Total(),
		FormattedTotal: q.FormattedTotal(),
		Eligible:       q.Eligible(),
		MinTickets:     h.MinTickets,
	}))
}

// SubmitRegistration is the intake endpoint: multipart fields plus the proof
// file. Validation failures return the full message list; a duplicate
// reference number returns 409.
func (h *Handler) SubmitRegistration(w http.ResponseWriter, r *http.Request) {
	h.Logger.Info("API", "SubmitRegistration: received request")

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxProofFileBytes+formParseOverhead)
	if err := r.ParseMultipartForm(h.MaxProofFileBytes + formParseOverhead); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("SubmitRegistration: failed to parse multipart form: %v", err))
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid multipart request", err.Error()))
		return
	}

	req := models.SubmissionRequest{
		BuyerName:       r.FormValue(fieldBuyerName),
		Email:           r.FormValue(fieldEmail),
		Phone:           r.FormValue(fieldPhone),
		ReferenceNumber: r.FormValue(fieldReference),
		TicketCount:     r.FormValue(fieldTicketCount),
		TermsAccepted:   r.FormValue(fieldTerms) == "true" || r.FormValue(fieldTerms) == "on",
	}

	var proof *registration.ProofUpload
	file, header, err := r.FormFile(fieldProof)
	if err == nil {
		defer file.Close()
		proof = &registration.ProofUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Reader:      file,
		}
	}

	submission, err := h.Service.Submit(r.Context(), req, proof)
	if err != nil {
		var verr *registration.ValidationError
		switch {
		case errors.As(err, &verr):
			h.Logger.Warn("API", fmt.Sprintf("SubmitRegistration: rejected: %v", verr))
			h.writeJSON(w, http.StatusBadRequest, utils.ValidationErrorResponse("registration rejected", verr.Messages))
		case errors.Is(err, registration.ErrDuplicateReference):
			h.Logger.Warn("API", fmt.Sprintf("SubmitRegistration: duplicate reference %q", req.ReferenceNumber))
			h.writeJSON(w, http.StatusConflict, utils.ErrorResponse("registration rejected", registration.ErrDuplicateReference.Error()))
		default:
			h.Logger.Error("API", fmt.Sprintf("SubmitRegistration: %v", err))
			h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("registration failed", err.Error()))
		}
		return
	}

	h.Logger.LogSubmission("CREATED", submission.ID, fmt.Sprintf("%d tickets, reference %s", submission.TicketCount, submission.ReferenceNumber))
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("registration received", models.SubmissionResponse{ID: submission.ID}))
}
