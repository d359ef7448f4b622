package db

import (
	"context"

	"github.com/uptrace/bun"

	"rifa-service/internal/models"
)

type DB struct {
	Bun *bun.DB
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

// GetIssuedCodeValues loads every code ever issued, across all submissions.
// The issuance lock keeps this read-then-write window single-writer.
func (d *DB) GetIssuedCodeValues(ctx context.Context) ([]string, error) {
	var values []string
	err := d.Bun.NewSelect().
		Model((*models.RaffleCode)(nil)).
		Column("value").
		Scan(ctx, &values)
	if err != nil {
		return nil, err
	}
	return values, nil
}

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

// CreateCodes persists a whole issuance batch in one insert. The unique
// constraint on value makes any duplicate fail the entire batch.
func (d *DB) CreateCodes(ctx context.Context, codes []models.RaffleCode) error {
	if len(codes) == 0 {
		return nil
	}
	_, err := d.Bun.NewInsert().Model(&codes).Exec(ctx)
	return err
}
