package events

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		tag    string
		status string
		want   EventType
	}{
		{name: "deposit", tag: "PAYMENT_INBOUND", status: "EXECUTED", want: Deposit},
		{name: "card deposit", tag: "card_refund", status: "EXECUTED", want: Deposit},
		{name: "sell", tag: "SHAREBOOKING", status: "EXECUTED", want: Sell},
		{name: "dividend", tag: "ssp_corporate_action_invoice_cash", status: "EXECUTED", want: Dividend},
		{name: "interest", tag: "INTEREST_PAYOUT", status: "EXECUTED", want: Interest},
		{name: "removal", tag: "card_successful_transaction", status: "EXECUTED", want: Removal},
		{name: "tax refund", tag: "ssp_tax_correction_invoice", status: "EXECUTED", want: TaxRefund},
		{name: "trade invoice is conditional", tag: "ORDER_EXECUTED", status: "EXECUTED", want: TradeInvoice},
		{name: "saveback is conditional", tag: "benefits_saveback_execution", status: "EXECUTED", want: Saveback},
		{name: "stock perk is conditional", tag: "STOCK_PERK_REFUNDED", status: "EXECUTED", want: StockPerkRefunded},
		{name: "unknown tag", tag: "SOMETHING_NEW", status: "EXECUTED", want: nil},
		{name: "empty tag", tag: "", status: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.tag, tt.status); got != tt.want {
				t.Errorf("Classify(%q, %q) = %v, want %v", tt.tag, tt.status, got, tt.want)
			}
		})
	}
}

// Cancellation overrides every table entry, case-insensitively.
func TestClassifyCanceled(t *testing.T) {
	for tag := range eventTypeByTag {
		for _, status := range []string{"canceled", "CANCELED", "Canceled"} {
			if got := Classify(tag, status); got != nil {
				t.Errorf("Classify(%q, %q) = %v, want nil", tag, status, got)
			}
		}
	}
	if got := Classify("UNKNOWN_TAG", "canceled"); got != nil {
		t.Errorf("Classify(unknown, canceled) = %v, want nil", got)
	}
}
