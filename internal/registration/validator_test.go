package registration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rifa-service/internal/models"
	"rifa-service/internal/registration"
)

const testMaxProofBytes = 2 * 1024 * 1024

func validRequest() models.SubmissionRequest {
	return models.SubmissionRequest{
		BuyerName:       "Camila Soto",
		Email:           "camila@example.com",
		Phone:           "+56 9 8765 4321",
		ReferenceNumber: "TRX-100234",
		TicketCount:     "3",
		TermsAccepted:   true,
	}
}

func TestValidateSubmissionAccepted(t *testing.T) {
	v := registration.NewValidator(3, testMaxProofBytes)

	count, errs := v.ValidateSubmission(validRequest(), 1024, true)

	assert.Empty(t, errs)
	assert.Equal(t, 3, count)
}

func TestValidateSubmissionCollectsEveryFailure(t *testing.T) {
	v := registration.NewValidator(3, testMaxProofBytes)

	req := models.SubmissionRequest{
		BuyerName:       "   ",
		Email:           "",
		Phone:           " ",
		ReferenceNumber: "",
		TicketCount:     "abc",
		TermsAccepted:   false,
	}

	_, errs := v.ValidateSubmission(req, 0, false)

	// Every rule is evaluated; nothing short-circuits.
	assert.Equal(t, []string{
		registration.MsgNameRequired,
		registration.MsgEmailRequired,
		registration.MsgPhoneRequired,
		registration.MsgReferenceRequired,
		registration.MsgTicketCountInvalid("abc"),
		registration.MsgProofRequired,
		registration.MsgTermsRequired,
	}, errs)
}

func TestValidateSubmissionEmailShape(t *testing.T) {
	v := registration.NewValidator(3, testMaxProofBytes)

	req := validRequest()
	req.Email = "not-an-email"

	_, errs := v.ValidateSubmission(req, 1024, true)

	assert.Equal(t, []string{registration.MsgEmailInvalid}, errs)
}

func TestValidateSubmissionTicketCountBoundary(t *testing.T) {
	v := registration.NewValidator(3, testMaxProofBytes)

	req := validRequest()
	req.TicketCount = "2"
	_, errs := v.ValidateSubmission(req, 1024, true)
	assert.Equal(t, []string{registration.MsgTicketCountBelowMinimum(3)}, errs)

	req.TicketCount = "3"
	count, errs := v.ValidateSubmission(req, 1024, true)
	assert.Empty(t, errs)
	assert.Equal(t, 3, count)
}

func TestValidateSubmissionBelowMinimumIsErrorNotClamp(t *testing.T) {
	v := registration.NewValidator(3, testMaxProofBytes)

	req := validRequest()
	req.TicketCount = "0"

	count, errs := v.ValidateSubmission(req, 1024, true)

	assert.NotEmpty(t, errs)
	assert.Equal(t, 0, count)
}

func TestValidateSubmissionFileSizeCeiling(t *testing.T) {
	v := registration.NewValidator(3, testMaxProofBytes)

	// Exactly at the ceiling passes.
	_, errs := v.ValidateSubmission(validRequest(), testMaxProofBytes, true)
	assert.Empty(t, errs)

	// One byte over fails with the size-specific message.
	_, errs = v.ValidateSubmission(validRequest(), testMaxProofBytes+1, true)
	assert.Equal(t, []string{registration.MsgProofTooLarge(testMaxProofBytes)}, errs)
}

func TestValidateSubmissionTrimsWhitespace(t *testing.T) {
	v := registration.NewValidator(3, testMaxProofBytes)

	req := validRequest()
	req.BuyerName = "  Camila Soto  "
	req.ReferenceNumber = " TRX-1 "

	_, errs := v.ValidateSubmission(req, 1024, true)

	assert.Empty(t, errs)
}
