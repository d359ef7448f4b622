package registration_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"rifa-service/internal/logger"
	"rifa-service/internal/models"
	"rifa-service/internal/registration"
)

// Mock implementations
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateSubmission(ctx context.Context, submission models.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockDBLayer) GetSubmissionByID(ctx context.Context, id string) (*models.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockDBLayer) ReferenceNumberExists(ctx context.Context, reference string) (bool, error) {
	args := m.Called(ctx, reference)
	return args.Bool(0), args.Error(1)
}

func (m *MockDBLayer) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Submission), args.Error(1)
}

func (m *MockDBLayer) MarkValidated(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteSubmission(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDBLayer) CreateProofFile(ctx context.Context, proof models.ProofFile) error {
	args := m.Called(ctx, proof)
	return args.Error(0)
}

func (m *MockDBLayer) GetProofFileBySubmission(ctx context.Context, submissionID string) (*models.ProofFile, error) {
	args := m.Called(ctx, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProofFile), args.Error(1)
}

func (m *MockDBLayer) GetCodesBySubmission(ctx context.Context, submissionID string) ([]models.RaffleCode, error) {
	args := m.Called(ctx, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RaffleCode), args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	args := m.Called(ctx, key, contentType, r)
	return args.Error(0)
}

func (m *MockStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishSubmissionValidated(ctx context.Context, event models.SubmissionValidatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func newTestService(db *MockDBLayer, store *MockStore, pub *MockPublisher) *registration.Service {
	v := registration.NewValidator(3, testMaxProofBytes)
	return registration.NewService(db, store, pub, v, logger.NewLogger("test"))
}

func proofUpload() *registration.ProofUpload {
	return &registration.ProofUpload{
		Filename:    "comprobante.jpg",
		ContentType: "image/jpeg",
		Size:        1024,
		Reader:      strings.NewReader("fake image bytes"),
	}
}

func TestSubmitSuccess(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockStore := new(MockStore)
	mockPub := new(MockPublisher)
	svc := newTestService(mockDB, mockStore, mockPub)

	mockDB.On("ReferenceNumberExists", mock.Anything, "TRX-100234").Return(false, nil)
	mockStore.On("Put", mock.Anything, mock.Anything, "image/jpeg", mock.Anything).Return(nil)
	mockDB.On("CreateSubmission", mock.Anything, mock.Anything).Return(nil)
	mockDB.On("CreateProofFile", mock.Anything, mock.Anything).Return(nil)

	submission, err := svc.Submit(context.Background(), validRequest(), proofUpload())

	assert.NoError(t, err)
	assert.NotNil(t, submission)
	assert.Equal(t, 3, submission.TicketCount)
	assert.False(t, submission.Validated)
	mockDB.AssertExpectations(t)
	mockStore.AssertExpectations(t)

	// The storage key carries the original extension but never the name.
	putKey := mockStore.Calls[0].Arguments.String(1)
	assert.True(t, strings.HasSuffix(putKey, ".jpg"))
	assert.NotContains(t, putKey, "comprobante")
}

func TestSubmitValidationFailureSkipsTransport(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockStore := new(MockStore)
	mockPub := new(MockPublisher)
	svc := newTestService(mockDB, mockStore, mockPub)

	req := validRequest()
	req.TicketCount = "2"

	submission, err := svc.Submit(context.Background(), req, proofUpload())

	assert.Nil(t, submission)
	var verr *registration.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{registration.MsgTicketCountBelowMinimum(3)}, verr.Messages)

	// Nothing was uploaded or inserted.
	mockStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockDB.AssertNotCalled(t, "CreateSubmission", mock.Anything, mock.Anything)
}

func TestSubmitDuplicateReferencePreCheck(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockStore := new(MockStore)
	mockPub := new(MockPublisher)
	svc := newTestService(mockDB, mockStore, mockPub)

	mockDB.On("ReferenceNumberExists", mock.Anything, "TRX-100234").Return(true, nil)

	submission, err := svc.Submit(context.Background(), validRequest(), proofUpload())

	assert.Nil(t, submission)
	assert.ErrorIs(t, err, registration.ErrDuplicateReference)
	mockStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitDuplicateReferenceConstraintRace(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockStore := new(MockStore)
	mockPub := new(MockPublisher)
	svc := newTestService(mockDB, mockStore, mockPub)

	// The pre-check misses the race; the unique constraint catches it.
	mockDB.On("ReferenceNumberExists", mock.Anything, mock.Anything).Return(false, nil)
	mockStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockDB.On("CreateSubmission", mock.Anything, mock.Anything).Return(&pq.Error{Code: "23505"})
	mockStore.On("Delete", mock.Anything, mock.Anything).Return(nil)

	submission, err := svc.Submit(context.Background(), validRequest(), proofUpload())

	assert.Nil(t, submission)
	assert.ErrorIs(t, err, registration.ErrDuplicateReference)
	// The uploaded object was compensated away.
	mockStore.AssertCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSubmitProofMetadataFailureRollsBackEverything(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockStore := new(MockStore)
	mockPub := new(MockPublisher)
	svc := newTestService(mockDB, mockStore, mockPub)

	mockDB.On("ReferenceNumberExists", mock.Anything, mock.Anything).Return(false, nil)
	mockStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockDB.On("CreateSubmission", mock.Anything, mock.Anything).Return(nil)
	mockDB.On("CreateProofFile", mock.Anything, mock.Anything).Return(errors.New("db down"))
	mockDB.On("DeleteSubmission", mock.Anything, mock.Anything).Return(nil)
	mockStore.On("Delete", mock.Anything, mock.Anything).Return(nil)

	submission, err := svc.Submit(context.Background(), validRequest(), proofUpload())

	assert.Nil(t, submission)
	assert.Error(t, err)
	// No orphaned row, no orphaned file.
	mockDB.AssertCalled(t, "DeleteSubmission", mock.Anything, mock.Anything)
	mockStore.AssertCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSubmitUploadFailure(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockStore := new(MockStore)
	mockPub := new(MockPublisher)
	svc := newTestService(mockDB, mockStore, mockPub)

	mockDB.On("ReferenceNumberExists", mock.Anything, mock.Anything).Return(false, nil)
	mockStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))

	submission, err := svc.Submit(context.Background(), validRequest(), proofUpload())

	assert.Nil(t, submission)
	assert.Error(t, err)
	mockDB.AssertNotCalled(t, "CreateSubmission", mock.Anything, mock.Anything)
}

func TestValidatePublishesEvent(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockStore := new(MockStore)
	mockPub := new(MockPublisher)
	svc := newTestService(mockDB, mockStore, mockPub)

	mockDB.On("MarkValidated", mock.Anything, "sub_1").Return(nil)
	mockPub.On("PublishSubmissionValidated", mock.Anything, mock.MatchedBy(func(e models.SubmissionValidatedEvent) bool {
		return e.SubmissionID == "sub_1"
	})).Return(nil)

	err := svc.Validate(context.Background(), "sub_1")

	assert.NoError(t, err)
	mockPub.AssertExpectations(t)
}

func TestValidateUnknownSubmission(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockStore := new(MockStore)
	mockPub := new(MockPublisher)
	svc := newTestService(mockDB, mockStore, mockPub)

	mockDB.On("MarkValidated", mock.Anything, "missing").Return(errors.New("sql: no rows in result set"))

	err := svc.Validate(context.Background(), "missing")

	assert.ErrorIs(t, err, registration.ErrSubmissionNotFound)
	mockPub.AssertNotCalled(t, "PublishSubmissionValidated", mock.Anything, mock.Anything)
}
