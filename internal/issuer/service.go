package issuer

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"rifa-service/internal/logger"
	"rifa-service/internal/mailer"
	"rifa-service/internal/models"
)

var (
	ErrIssuanceBusy   = errors.New("another issuance is in progress")
	ErrNotValidated   = errors.New("submission is not validated")
	ErrCapExceeded    = errors.New("code cap would be exceeded")
	ErrSpaceExhausted = errors.New("draw attempts exhausted before batch completed")
)

type DBLayer interface {
	GetSubmissionByID(ctx context.Context, id string) (*models.Submission, error)
	GetIssuedCodeValues(ctx context.Context) ([]string, error)
	GetCodesBySubmission(ctx context.Context, submissionID string) ([]models.RaffleCode, error)
	CreateCodes(ctx context.Context, codes []models.RaffleCode) error
}

type IssuanceLock interface {
	AcquireIssuanceLock(ctx context.Context, owner string) (bool, error)
	ReleaseIssuanceLock(ctx context.Context, owner string) error
}

type Service struct {
	DB     DBLayer
	Lock   IssuanceLock
	Mailer mailer.Mailer
	Logger *logger.Logger

	codeCap         int
	attemptsPerCode int
	rng             *rand.Rand
}

func NewService(db DBLayer, lock IssuanceLock, m mailer.Mailer, log *logger.Logger, codeCap, attemptsPerCode int) *Service {
	return &Service{
		DB:              db,
		Lock:            lock,
		Mailer:          m,
		Logger:          log,
		codeCap:         codeCap,
		attemptsPerCode: attemptsPerCode,
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRandSource replaces the draw source, for deterministic tests.
func (s *Service) SetRandSource(src rand.Source) {
	s.rng = rand.New(src)
}

// IssueCodes assigns the submission's requested number of unique 4-digit
// codes and emails them to the buyer. The whole operation runs under the
// global issuance lock; codes either persist as a complete batch or not at
// all. A submission that already has codes is a no-op, which makes event
// redelivery safe.
func (s *Service) IssueCodes(ctx context.Context, submissionID string) error {
	ok, err := s.Lock.AcquireIssuanceLock(ctx, submissionID)
	if err != nil {
		return fmt.Errorf("failed to acquire issuance lock: %w", err)
	}
	if !ok {
		return ErrIssuanceBusy
	}
	defer func() {
		if err := s.Lock.ReleaseIssuanceLock(ctx, submissionID); err != nil {
			s.Logger.Error("ISSUER", fmt.Sprintf("failed to release issuance lock for %s: %v", submissionID, err))
		}
	}()

	submission, err := s.DB.GetSubmissionByID(ctx, submissionID)
	if err != nil {
		return fmt.Errorf("submission %s not found: %w", submissionID, err)
	}
	if !submission.Validated {
		return ErrNotValidated
	}

	existing, err := s.DB.GetCodesBySubmission(ctx, submissionID)
	if err != nil {
		return fmt.Errorf("failed to load codes for submission %s: %w", submissionID, err)
	}
	if len(existing) > 0 {
		s.Logger.LogIssuance(submissionID, fmt.Sprintf("already has %d codes, skipping", len(existing)))
		return nil
	}

	issued, err := s.DB.GetIssuedCodeValues(ctx)
	if err != nil {
		return fmt.Errorf("failed to load issued code set: %w", err)
	}

	if len(issued)+submission.TicketCount > s.codeCap {
		return fmt.Errorf("%w: %d issued, %d requested, cap %d",
			ErrCapExceeded, len(issued), submission.TicketCount, s.codeCap)
	}

	values, err := s.drawBatch(issued, submission.TicketCount)
	if err != nil {
		return err
	}

	now := time.Now()
	batch := make([]models.RaffleCode, 0, len(values))
	for _, v := range values {
		batch = append(batch, models.RaffleCode{
			SubmissionID: submissionID,
			Value:        v,
			IssuedAt:     now,
		})
	}
	if err := s.DB.CreateCodes(ctx, batch); err != nil {
		// The unique constraint on value is the backstop behind the
		// lock; a violation fails the whole batch, nothing persists.
		return fmt.Errorf("failed to persist code batch: %w", err)
	}

	s.Logger.LogIssuance(submissionID, fmt.Sprintf("issued %d codes", len(values)))

	// Codes are the source of truth; the email is best-effort.
	if err := s.Mailer.SendCodes(ctx, submission.Email, submission.BuyerName, values); err != nil {
		s.Logger.Error("MAIL", fmt.Sprintf("failed to email codes for %s to %s: %v", submissionID, submission.Email, err))
	} else {
		s.Logger.LogMail(submission.Email, fmt.Sprintf("sent %d codes for %s", len(values), submissionID))
	}

	return nil
}

// drawBatch samples `count` distinct zero-padded values from "0000".."9999",
// rejecting collisions with the already-issued set and with earlier draws of
// this batch. Attempts are bounded so the loop cannot spin as the code space
// nears exhaustion; hitting the bound fails the whole batch.
func (s *Service) drawBatch(issued []string, count int) ([]string, error) {
	taken := make(map[string]struct{}, len(issued)+count)
	for _, v := range issued {
		taken[v] = struct{}{}
	}

	maxAttempts := s.attemptsPerCode * count
	values := make([]string, 0, count)
	for attempts := 0; len(values) < count; attempts++ {
		if attempts >= maxAttempts {
			return nil, fmt.Errorf("%w: %d of %d drawn after %d attempts",
				ErrSpaceExhausted, len(values), count, maxAttempts)
		}
		v := fmt.Sprintf("%04d", s.rng.Intn(10000))
		if _, dup := taken[v]; dup {
			continue
		}
		taken[v] = struct{}{}
		values = append(values, v)
	}
	return values, nil
}
