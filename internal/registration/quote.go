package registration

import (
	"strconv"
	"strings"

	"rifa-service/internal/models"
)

// Quote mirrors the registration form's ticket selector: one selected payment
// method, an accumulated ticket count and the derived total. It is created
// per page session and owns the method selection for every widget that reads
// it.
type Quote struct {
	method     models.PaymentMethod
	count      int
	customText string
	minTickets int
}

func NewQuote(minTickets int) *Quote {
	return &Quote{
		method:     models.DefaultPaymentMethod(),
		minTickets: minTickets,
	}
}

// AddPreset adds amount to the current count. Repeated clicks accumulate,
// they never replace.
func (q *Quote) AddPreset(amount int) {
	if amount < 0 {
		return
	}
	q.count += amount
}

// SetCustom strips everything but digits from raw and replaces the count with
// the result. An empty remainder means zero.
func (q *Quote) SetCustom(raw string) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	q.customText = b.String()
	if q.customText == "" {
		q.count = 0
		return
	}
	n, err := strconv.Atoi(q.customText)
	if err != nil {
		// Digits-only input longer than an int can hold.
		q.count = 0
		q.customText = ""
		return
	}
	q.count = n
}

// Reset zeroes the count and clears the custom-input text.
func (q *Quote) Reset() {
	q.count = 0
	q.customText = ""
}

// SelectMethod switches the active payment method, which switches the active
// currency and therefore the unit price behind Total.
func (q *Quote) SelectMethod(id models.PaymentMethodID) bool {
	m, ok := models.PaymentMethodByID(id)
	if !ok {
		return false
	}
	q.method = m
	return true
}

func (q *Quote) Method() models.PaymentMethod {
	return q.method
}

func (q *Quote) Count() int {
	return q.count
}

func (q *Quote) CustomText() string {
	return q.customText
}

func (q *Quote) UnitPrice() float64 {
	return models.TicketPrices[q.method.Currency]
}

// Total is always count times the unit price of the active currency; it is
// derived on read so a method switch re-prices immediately.
func (q *Quote) Total() float64 {
	return float64(q.count) * q.UnitPrice()
}

func (q *Quote) FormattedTotal() string {
	return models.FormatAmount(q.method.Currency, q.Total())
}

// Eligible reports whether the count has reached the configured minimum.
// Below-minimum is not an error by itself, but the submit gate blocks it and
// the UI warns.
func (q *Quote) Eligible() bool {
	return q.count >= q.minTickets
}
