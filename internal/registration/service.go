package registration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"rifa-service/internal/logger"
	"rifa-service/internal/models"
	regdb "rifa-service/internal/registration/db"
	"rifa-service/internal/storage"
	"rifa-service/internal/utils"
)

var (
	ErrDuplicateReference = errors.New("reference number already registered")
	ErrSubmissionNotFound = errors.New("submission not found")
)

// ValidationError carries every failed gate rule for a rejected submission.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

type DBLayer interface {
	CreateSubmission(ctx context.Context, submission models.Submission) error
	GetSubmissionByID(ctx context.Context, id string) (*models.Submission, error)
	ReferenceNumberExists(ctx context.Context, reference string) (bool, error)
	ListSubmissions(ctx context.Context) ([]models.Submission, error)
	MarkValidated(ctx context.Context, id string) error
	DeleteSubmission(ctx context.Context, id string) error
	CreateProofFile(ctx context.Context, proof models.ProofFile) error
	GetProofFileBySubmission(ctx context.Context, submissionID string) (*models.ProofFile, error)
	GetCodesBySubmission(ctx context.Context, submissionID string) ([]models.RaffleCode, error)
}

type EventPublisher interface {
	PublishSubmissionValidated(ctx context.Context, event models.SubmissionValidatedEvent) error
}

// ProofUpload is the attached proof-of-payment file as parsed from the
// multipart request.
type ProofUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type Service struct {
	DB        DBLayer
	Store     storage.Store
	Kafka     EventPublisher
	Validator *Validator
	Logger    *logger.Logger
}

func NewService(db DBLayer, store storage.Store, kafka EventPublisher, validator *Validator, log *logger.Logger) *Service {
	return &Service{DB: db, Store: store, Kafka: kafka, Validator: validator, Logger: log}
}

// Submit runs the server-side intake: every gate rule again (client checks
// are bypassable), duplicate-reference check, proof upload under a generated
// key, then the submission and file-metadata rows. Any failure after the
// upload deletes the stored object so no orphaned file survives.
//
// The endpoint carries no idempotency key: a client retry after a timeout can
// duplicate a registration unless the reference-number uniqueness rejects it.
// That is a documented limitation, not handled here.
func (s *Service) Submit(ctx context.Context, req models.SubmissionRequest, proof *ProofUpload) (*models.Submission, error) {
	var (
		size    int64
		hasFile bool
	)
	if proof != nil {
		size = proof.Size
		hasFile = true
	}
	count, msgs := s.Validator.ValidateSubmission(req, size, hasFile)
	if len(msgs) > 0 {
		return nil, &ValidationError{Messages: msgs}
	}

	reference := strings.TrimSpace(req.ReferenceNumber)
	exists, err := s.DB.ReferenceNumberExists(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to check reference number: %w", err)
	}
	if exists {
		return nil, ErrDuplicateReference
	}

	storageKey := utils.GenerateStorageKey(proof.Filename)
	if err := s.Store.Put(ctx, storageKey, proof.ContentType, proof.Reader); err != nil {
		return nil, fmt.Errorf("failed to store proof file: %w", err)
	}

	submission := models.Submission{
		ID:              utils.GenerateSubmissionID(),
		BuyerName:       strings.TrimSpace(req.BuyerName),
		Email:           strings.TrimSpace(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		ReferenceNumber: reference,
		TicketCount:     count,
		Validated:       false,
		CreatedAt:       time.Now(),
	}

	if err := s.DB.CreateSubmission(ctx, submission); err != nil {
		s.deleteObject(ctx, storageKey)
		if regdb.IsUniqueViolation(err) {
			// Two submissions raced on the same reference; the
			// pre-check above is advisory, the constraint decides.
			return nil, ErrDuplicateReference
		}
		return nil, fmt.Errorf("failed to insert submission: %w", err)
	}

	proofRow := models.ProofFile{
		SubmissionID:     submission.ID,
		StorageKey:       storageKey,
		OriginalFilename: proof.Filename,
		ContentType:      proof.ContentType,
		SizeBytes:        proof.Size,
		CreatedAt:        time.Now(),
	}
	if err := s.DB.CreateProofFile(ctx, proofRow); err != nil {
		if delErr := s.DB.DeleteSubmission(ctx, submission.ID); delErr != nil {
			s.Logger.Error("INTAKE", fmt.Sprintf("rollback of submission %s failed: %v", submission.ID, delErr))
		}
		s.deleteObject(ctx, storageKey)
		return nil, fmt.Errorf("failed to insert proof file metadata: %w", err)
	}

	return &submission, nil
}

func (s *Service) deleteObject(ctx context.Context, key string) {
	if err := s.Store.Delete(ctx, key); err != nil {
		s.Logger.Error("INTAKE", fmt.Sprintf("compensating delete of object %s failed: %v", key, err))
	}
}

func (s *Service) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	submission, err := s.DB.GetSubmissionByID(ctx, id)
	if err != nil {
		return nil, ErrSubmissionNotFound
	}
	return submission, nil
}

func (s *Service) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	return s.DB.ListSubmissions(ctx)
}

// GetCodes returns the codes issued against a submission, for the operator
// surface. An empty list simply means issuance has not run yet.
func (s *Service) GetCodes(ctx context.Context, submissionID string) ([]models.RaffleCode, error) {
	if _, err := s.DB.GetSubmissionByID(ctx, submissionID); err != nil {
		return nil, ErrSubmissionNotFound
	}
	return s.DB.GetCodesBySubmission(ctx, submissionID)
}

// Validate marks a submission's payment as confirmed and publishes the
// validated event that triggers code issuance. The publish is best-effort
// relative to the flag: a Kafka failure is returned to the operator so they
// can retry, but the flag stays set.
func (s *Service) Validate(ctx context.Context, id string) error {
	if err := s.DB.MarkValidated(ctx, id); err != nil {
		return ErrSubmissionNotFound
	}

	event := models.SubmissionValidatedEvent{
		SubmissionID: id,
		ValidatedAt:  time.Now(),
	}
	if err := s.Kafka.PublishSubmissionValidated(ctx, event); err != nil {
		return fmt.Errorf("submission marked validated but event publish failed: %w", err)
	}
	return nil
}
