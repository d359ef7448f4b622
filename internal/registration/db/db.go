package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"rifa-service/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateSubmission(ctx context.Context, submission models.Submission) error {
	_, err := d.Bun.NewInsert().Model(&submission).Exec(ctx)
	return err
}

func (d *DB) GetSubmissionByID(ctx context.Context, id string) (*models.Submission, error) {
	var submission models.Submission
	err := d.Bun.NewSelect().
		Model(&submission).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// ReferenceNumberExists is the advisory pre-check for duplicate references.
// The unique constraint on the column is what actually decides the race.
func (d *DB) ReferenceNumberExists(ctx context.Context, reference string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Submission)(nil)).
		Where("reference_number = ?", reference).
		Exists(ctx)
}

func (d *DB) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	var submissions []models.Submission
	err := d.Bun.NewSelect().
		Model(&submissions).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

// MarkValidated flips the validated flag. It reports sql.ErrNoRows when the
// submission does not exist.
func (d *DB) MarkValidated(ctx context.Context, id string) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Submission)(nil)).
		Set("validated = ?", true).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteSubmission removes a submission row during intake rollback.
func (d *DB) DeleteSubmission(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Submission)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (d *DB) CreateProofFile(ctx context.Context, proof models.ProofFile) error {
	_, err := d.Bun.NewInsert().Model(&proof).Exec(ctx)
	return err
}

func (d *DB) GetProofFileBySubmission(ctx context.Context, submissionID string) (*models.ProofFile, error) {
	var proof models.ProofFile
	err := d.Bun.NewSelect().
		Model(&proof).
		Where("submission_id = ?", submissionID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &proof, nil
}

// GetCodesBySubmission serves the operator read of a submission's issued
// codes. Issuance itself lives in the issuer service; this is lookup only.
func (d *DB) GetCodesBySubmission(ctx context.Context, submissionID string) ([]models.RaffleCode, error) {
	var codes []models.RaffleCode
	err := d.Bun.NewSelect().
		Model(&codes).
		Where("submission_id = ?", submissionID).
		Order("value ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// IsUniqueViolation reports whether err is a storage-level unique constraint
// failure (Postgres 23505 in production, sqlite's message in tests).
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
