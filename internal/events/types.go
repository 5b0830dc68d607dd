package events

import "strings"

// EventType is the normalized category of a timeline event. It is either a
// ResolvedType, which needs no further interpretation, or a ConditionalType,
// whose final meaning depends on context the exporter resolves later.
type EventType interface {
	isEventType()
	String() string
}

// ResolvedType is a category that maps directly to a bookkeeping entry.
type ResolvedType string

const (
	Buy            ResolvedType = "BUY"
	Deposit        ResolvedType = "DEPOSIT"
	Dividend       ResolvedType = "DIVIDEND"
	Fees           ResolvedType = "FEES"
	FeesRefund     ResolvedType = "FEES_REFUND"
	Interest       ResolvedType = "INTEREST"
	InterestCharge ResolvedType = "INTEREST_CHARGE"
	Removal        ResolvedType = "REMOVAL"
	Sell           ResolvedType = "SELL"
	Taxes          ResolvedType = "TAXES"
	TaxRefund      ResolvedType = "TAX_REFUND"
	TransferIn     ResolvedType = "TRANSFER_IN"
	TransferOut    ResolvedType = "TRANSFER_OUT"
)

func (ResolvedType) isEventType()     {}
func (t ResolvedType) String() string { return string(t) }

// ConditionalType is a category that only resolves to concrete bookkeeping
// entries downstream (e.g. a trade invoice becomes BUY or SELL by value sign).
type ConditionalType string

const (
	Saveback          ConditionalType = "SAVEBACK"
	TradeInvoice      ConditionalType = "TRADE_INVOICE"
	StockPerkRefunded ConditionalType = "STOCK_PERK_REFUNDED"
)

func (ConditionalType) isEventType()     {}
func (t ConditionalType) String() string { return string(t) }

// eventTypeByTag maps the broker's raw eventType tags to normalized categories.
// Read-only after init; unknown tags classify to nil.
var eventTypeByTag = map[string]EventType{
	// Deposits
	"INCOMING_TRANSFER":                 Deposit,
	"INCOMING_TRANSFER_DELEGATION":      Deposit,
	"PAYMENT_INBOUND":                   Deposit,
	"PAYMENT_INBOUND_APPLE_PAY":         Deposit,
	"PAYMENT_INBOUND_GOOGLE_PAY":        Deposit,
	"PAYMENT_INBOUND_SEPA_DIRECT_DEBIT": Deposit,
	"PAYMENT_INBOUND_CREDIT_CARD":       Deposit,
	"card_refund":                       Deposit,
	"card_successful_oct":               Deposit,
	"card_tr_refund":                    Deposit,

	// Buy/Sell
	"STOCK_PERK_REFUNDED":        StockPerkRefunded,
	"SHAREBOOKING_TRANSACTIONAL": Sell,
	"SHAREBOOKING":               Sell,

	// Dividends
	"CREDIT":                           Dividend,
	"ssp_corporate_action_invoice_cash": Dividend,

	// Failed card transactions
	"card_failed_transaction": Removal,

	// Interests
	"INTEREST_PAYOUT":         Interest,
	"INTEREST_PAYOUT_CREATED": Interest,

	// Removals
	"OUTGOING_TRANSFER":              Removal,
	"OUTGOING_TRANSFER_DELEGATION":   Removal,
	"PAYMENT_OUTBOUND":               Removal,
	"card_order_billed":              Removal,
	"card_successful_atm_withdrawal": Removal,
	"card_successful_transaction":    Removal,

	// Saveback
	"benefits_saveback_execution": Saveback,

	// Tax refunds
	"TAX_REFUND":                 TaxRefund,
	"ssp_tax_correction_invoice": TaxRefund,

	// Trade invoices
	"ORDER_EXECUTED":                 TradeInvoice,
	"SAVINGS_PLAN_EXECUTED":          TradeInvoice,
	"SAVINGS_PLAN_INVOICE_CREATED":   TradeInvoice,
	"benefits_spare_change_execution": TradeInvoice,
	"TRADE_INVOICE":                  TradeInvoice,
}

// Classify maps a raw event tag and its status to a normalized category.
// A canceled status always yields nil, even for known tags.
func Classify(tag, status string) EventType {
	if strings.EqualFold(status, "canceled") {
		return nil
	}
	return eventTypeByTag[tag]
}
