package models

import (
	"fmt"
	"strings"
)

type Currency string

const (
	CurrencyCLP Currency = "CLP"
	CurrencyUSD Currency = "USD"
)

type PaymentMethodID string

const (
	MethodBankTransfer PaymentMethodID = "bank_transfer"
	MethodMach         PaymentMethodID = "mach"
	MethodPaypal       PaymentMethodID = "paypal"
	MethodWesternUnion PaymentMethodID = "western_union"
)

// PaymentMethod is static catalog data, fixed at build time.
type PaymentMethod struct {
	ID          PaymentMethodID `json:"id"`
	DisplayName string          `json:"display_name"`
	Logo        string          `json:"logo"`
	Currency    Currency        `json:"currency"`
}

// AccountDetail is the per-method disclosure shown to the buyer so they can
// transfer funds out-of-band. Only the fields that apply to a method are set.
type AccountDetail struct {
	MethodID      PaymentMethodID `json:"method_id"`
	AccountNumber string          `json:"account_number,omitempty"`
	HolderName    string          `json:"holder_name,omitempty"`
	TaxID         string          `json:"tax_id,omitempty"`
	Bank          string          `json:"bank,omitempty"`
	AccountType   string          `json:"account_type,omitempty"`
	Email         string          `json:"email,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	ServiceLabel  string          `json:"service_label,omitempty"`
}

// TicketPreset builds one quick-add button.
type TicketPreset struct {
	Label  string `json:"label"`
	Amount int    `json:"amount"`
}

var PaymentMethods = []PaymentMethod{
	{ID: MethodBankTransfer, DisplayName: "Transferencia Bancaria", Logo: "logos/banco.svg", Currency: CurrencyCLP},
	{ID: MethodMach, DisplayName: "MACH", Logo: "logos/mach.svg", Currency: CurrencyCLP},
	{ID: MethodPaypal, DisplayName: "PayPal", Logo: "logos/paypal.svg", Currency: CurrencyUSD},
	{ID: MethodWesternUnion, DisplayName: "Western Union", Logo: "logos/wu.svg", Currency: CurrencyUSD},
}

var AccountDetails = map[PaymentMethodID]AccountDetail{
	MethodBankTransfer: {
		MethodID:      MethodBankTransfer,
		AccountNumber: "00123456789",
		HolderName:    "Maria Fernanda Rojas",
		TaxID:         "12.345.678-9",
		Bank:          "Banco Estado",
		AccountType:   "Cuenta Vista",
		Email:         "pagos@rifa.local",
	},
	MethodMach: {
		MethodID:      MethodMach,
		AccountNumber: "00987654321",
		HolderName:    "Maria Fernanda Rojas",
		TaxID:         "12.345.678-9",
		ServiceLabel:  "MACH",
		Email:         "pagos@rifa.local",
	},
	MethodPaypal: {
		MethodID:     MethodPaypal,
		HolderName:   "Maria Fernanda Rojas",
		Email:        "pagos@rifa.local",
		ServiceLabel: "PayPal",
	},
	MethodWesternUnion: {
		MethodID:     MethodWesternUnion,
		HolderName:   "Maria Fernanda Rojas",
		Phone:        "+56 9 1234 5678",
		ServiceLabel: "Western Union",
	},
}

var TicketPresets = []TicketPreset{
	{Label: "+3", Amount: 3},
	{Label: "+5", Amount: 5},
	{Label: "+10", Amount: 10},
	{Label: "+20", Amount: 20},
}

// TicketPrices holds the per-ticket unit price for each currency.
var TicketPrices = map[Currency]float64{
	CurrencyCLP: 800,
	CurrencyUSD: 1.00,
}

func PaymentMethodByID(id PaymentMethodID) (PaymentMethod, bool) {
	for _, m := range PaymentMethods {
		if m.ID == id {
			return m, true
		}
	}
	return PaymentMethod{}, false
}

// DefaultPaymentMethod is the method selected on page load: the first one
// configured.
func DefaultPaymentMethod() PaymentMethod {
	return PaymentMethods[0]
}

// FormatAmount renders an amount with the display rules of its currency:
// CLP uses no decimals and dot thousands separators, USD uses two decimals.
func FormatAmount(currency Currency, amount float64) string {
	switch currency {
	case CurrencyUSD:
		return fmt.Sprintf("US$%.2f", amount)
	default:
		return "$" + groupThousands(fmt.Sprintf("%.0f", amount))
	}
}

func groupThousands(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteRune('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
