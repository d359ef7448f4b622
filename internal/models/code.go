package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RaffleCode is one issued 4-digit entry number. Value is a zero-padded
// string, never an integer, so "0007" survives round trips intact. A code
// belongs to exactly one submission and is never mutated or deleted.
type RaffleCode struct {
	bun.BaseModel `bun:"table:raffle_codes"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	SubmissionID string    `bun:"submission_id" json:"submission_id"`
	Value        string    `bun:"value,unique" json:"value"`
	IssuedAt     time.Time `bun:"issued_at" json:"issued_at"`
}

// SubmissionValidatedEvent is the Kafka payload published when an operator
// confirms a submission's payment. The issuer service consumes it.
type SubmissionValidatedEvent struct {
	SubmissionID string    `json:"submission_id"`
	ValidatedAt  time.Time `json:"validated_at"`
}
