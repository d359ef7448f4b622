package registration

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"rifa-service/internal/models"
)

// Validation messages, one per rule. The same list is produced wherever the
// gate runs so the client and the server disagree on nothing.
const (
	MsgNameRequired      = "name is required"
	MsgEmailRequired     = "email is required"
	MsgEmailInvalid      = "email address is not valid"
	MsgPhoneRequired     = "phone is required"
	MsgReferenceRequired = "payment reference number is required"
	MsgProofRequired     = "proof of payment file is required"
	MsgTermsRequired     = "terms and conditions must be accepted"
)

func MsgTicketCountInvalid(raw string) string {
	return fmt.Sprintf("ticket count %q is not a number", raw)
}

func MsgTicketCountBelowMinimum(min int) string {
	return fmt.Sprintf("at least %d tickets are required", min)
}

func MsgProofTooLarge(maxBytes int64) string {
	return fmt.Sprintf("proof of payment file exceeds the %d MB limit", maxBytes/(1024*1024))
}

// Validator runs the registration submission gate. Every rule is evaluated
// and every failure collected; nothing short-circuits.
type Validator struct {
	validate          *validator.Validate
	minTickets        int
	maxProofFileBytes int64
}

func NewValidator(minTickets int, maxProofFileBytes int64) *Validator {
	return &Validator{
		validate:          validator.New(),
		minTickets:        minTickets,
		maxProofFileBytes: maxProofFileBytes,
	}
}

// ValidateSubmission checks the form fields plus the attached file and the
// terms checkbox. It returns the full list of failing rules in a fixed order,
// or nil when the submission may proceed. On success it also returns the
// parsed ticket count.
func (v *Validator) ValidateSubmission(req models.SubmissionRequest, fileSize int64, hasFile bool) (int, []string) {
	var errs []string

	trimmed := models.SubmissionRequest{
		BuyerName:       strings.TrimSpace(req.BuyerName),
		Email:           strings.TrimSpace(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
	}

	fieldErrs := map[string]string{}
	if err := v.validate.Struct(trimmed); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fieldErrs[fe.Field()] = fe.Tag()
			}
		}
	}

	if _, bad := fieldErrs["BuyerName"]; bad {
		errs = append(errs, MsgNameRequired)
	}
	switch fieldErrs["Email"] {
	case "required":
		errs = append(errs, MsgEmailRequired)
	case "email":
		errs = append(errs, MsgEmailInvalid)
	}
	if _, bad := fieldErrs["Phone"]; bad {
		errs = append(errs, MsgPhoneRequired)
	}
	if _, bad := fieldErrs["ReferenceNumber"]; bad {
		errs = append(errs, MsgReferenceRequired)
	}

	count := 0
	rawCount := strings.TrimSpace(req.TicketCount)
	n, err := strconv.Atoi(rawCount)
	if err != nil {
		errs = append(errs, MsgTicketCountInvalid(rawCount))
	} else if n < v.minTickets {
		errs = append(errs, MsgTicketCountBelowMinimum(v.minTickets))
	} else {
		count = n
	}

	if !hasFile {
		errs = append(errs, MsgProofRequired)
	} else if fileSize > v.maxProofFileBytes {
		errs = append(errs, MsgProofTooLarge(v.maxProofFileBytes))
	}

	if !req.TermsAccepted {
		errs = append(errs, MsgTermsRequired)
	}

	return count, errs
}
