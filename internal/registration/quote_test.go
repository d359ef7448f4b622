package registration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rifa-service/internal/models"
	"rifa-service/internal/registration"
)

func TestAddPresetAccumulates(t *testing.T) {
	q := registration.NewQuote(3)

	q.AddPreset(3)
	q.AddPreset(5)
	q.AddPreset(10)
	q.AddPreset(3)

	// Repeated clicks add up, they never replace.
	assert.Equal(t, 21, q.Count())
}

func TestSetCustomParsing(t *testing.T) {
	q := registration.NewQuote(3)

	q.SetCustom("abc123def")
	assert.Equal(t, 123, q.Count())

	q.SetCustom("")
	assert.Equal(t, 0, q.Count())

	q.SetCustom("0007")
	assert.Equal(t, 7, q.Count())
}

func TestSetCustomReplacesAccumulatedCount(t *testing.T) {
	q := registration.NewQuote(3)

	q.AddPreset(20)
	q.SetCustom("5")

	assert.Equal(t, 5, q.Count())
}

func TestResetZeroesEverything(t *testing.T) {
	q := registration.NewQuote(3)

	q.AddPreset(10)
	q.SetCustom("42")
	q.Reset()

	assert.Equal(t, 0, q.Count())
	assert.Equal(t, "", q.CustomText())
}

func TestTotalRecomputesOnCountAndCurrencyChange(t *testing.T) {
	q := registration.NewQuote(3)

	// Default method is the first configured one: bank transfer, CLP.
	assert.Equal(t, models.MethodBankTransfer, q.Method().ID)

	q.AddPreset(10)
	assert.Equal(t, float64(8000), q.Total())
	assert.Equal(t, "$8.000", q.FormattedTotal())

	// Switching to a USD method re-prices the same count immediately.
	ok := q.SelectMethod(models.MethodPaypal)
	assert.True(t, ok)
	assert.Equal(t, float64(10), q.Total())
	assert.Equal(t, "US$10.00", q.FormattedTotal())

	q.AddPreset(5)
	assert.Equal(t, float64(15), q.Total())
}

func TestSelectMethodUnknownID(t *testing.T) {
	q := registration.NewQuote(3)

	ok := q.SelectMethod("venmo")

	assert.False(t, ok)
	assert.Equal(t, models.DefaultPaymentMethod().ID, q.Method().ID)
}

func TestEligibleBelowMinimumIsFlaggedNotError(t *testing.T) {
	q := registration.NewQuote(3)

	q.AddPreset(2)
	assert.False(t, q.Eligible())

	q.AddPreset(1)
	assert.True(t, q.Eligible())
}
