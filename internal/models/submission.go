package models

import (
	"time"

	"github.com/uptrace/bun"
)

// SubmissionRequest carries the multipart form fields of a registration as
// received from the client, before validation. TicketCount stays a string
// because the form sends digits-only text and a non-numeric value must be
// reported as a validation error rather than a decode failure.
type SubmissionRequest struct {
	BuyerName       string `json:"buyer_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required"`
	ReferenceNumber string `json:"reference_number" validate:"required"`
	TicketCount     string `json:"ticket_count"`
	TermsAccepted   bool   `json:"terms_accepted"`
}

type Submission struct {
	bun.BaseModel `bun:"table:submissions"`

	ID              string    `bun:"id,pk" json:"id"`
	BuyerName       string    `bun:"buyer_name" json:"buyer_name"`
	Email           string    `bun:"email" json:"email"`
	Phone           string    `bun:"phone" json:"phone"`
	ReferenceNumber string    `bun:"reference_number,unique" json:"reference_number"`
	TicketCount     int       `bun:"ticket_count" json:"ticket_count"`
	Validated       bool      `bun:"validated" json:"validated"`
	CreatedAt       time.Time `bun:"created_at" json:"created_at"`
}

// ProofFile links a stored object key to its owning submission. The original
// filename is kept for display only; the storage key is always generated.
type ProofFile struct {
	bun.BaseModel `bun:"table:proof_files"`

	ID               int64     `bun:"id,pk,autoincrement" json:"id"`
	SubmissionID     string    `bun:"submission_id" json:"submission_id"`
	StorageKey       string    `bun:"storage_key,unique" json:"storage_key"`
	OriginalFilename string    `bun:"original_filename" json:"original_filename"`
	ContentType      string    `bun:"content_type" json:"content_type"`
	SizeBytes        int64     `bun:"size_bytes" json:"size_bytes"`
	CreatedAt        time.Time `bun:"created_at" json:"created_at"`
}

type SubmissionResponse struct {
	ID string `json:"id"`
}
