package events

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func buyEvent() map[string]interface{} {
	return map[string]interface{}{
		"timestamp": "2023-11-23T12:30:45.500+0000",
		"eventType": "ORDER_EXECUTED",
		"status":    "EXECUTED",
		"title":     "Siemens",
		"subtitle":  "Kauforder",
		"icon":      "logos/DE0007236101/v2",
		"amount": map[string]interface{}{
			"value":    -511.0,
			"currency": "EUR",
		},
		"details": map[string]interface{}{
			"sections": []interface{}{
				transactionSection("Transaktion",
					detailEntry("Anteile", "3,630000"),
					detailEntry("Gebühr", "1,00 €"),
					detailEntry("Gesamt", "511,00 €"),
				),
			},
		},
	}
}

func TestFromMap(t *testing.T) {
	ev, err := FromMap(buyEvent())
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}

	want := time.Date(2023, 11, 23, 12, 30, 45, 0, time.UTC)
	if !ev.Date.Equal(want) {
		t.Errorf("Date = %v, want %v truncated to seconds", ev.Date, want)
	}
	if ev.Title != "Siemens" || ev.Subtitle != "Kauforder" {
		t.Errorf("Title/Subtitle = %q/%q", ev.Title, ev.Subtitle)
	}
	if ev.Type != TradeInvoice {
		t.Errorf("Type = %v, want TRADE_INVOICE", ev.Type)
	}
	if ev.Value == nil || *ev.Value != -511.0 {
		t.Errorf("Value = %v, want -511", ev.Value)
	}
	if ev.Shares == nil || *ev.Shares != 3.63 {
		t.Errorf("Shares = %v, want 3.63", ev.Shares)
	}
	if ev.Fees == nil || *ev.Fees != 1.0 {
		t.Errorf("Fees = %v, want 1", ev.Fees)
	}
	if ev.Taxes != nil {
		t.Errorf("Taxes = %v, want nil", ev.Taxes)
	}
	if ev.ISIN != "DE0007236101" {
		t.Errorf("ISIN = %q, want DE0007236101", ev.ISIN)
	}
	if ev.Note != "" {
		t.Errorf("Note = %q, want empty", ev.Note)
	}
}

func TestFromMapCanceled(t *testing.T) {
	raw := buyEvent()
	raw["status"] = "CANCELED"
	ev, err := FromMap(raw)
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if ev.Type != nil {
		t.Errorf("Type = %v, want nil for canceled event", ev.Type)
	}
	// Extraction still runs; only the category is suppressed.
	if ev.Shares == nil {
		t.Error("Shares = nil, want extracted value")
	}
}

func TestFromMapZeroAmountIsAbsent(t *testing.T) {
	raw := buyEvent()
	raw["amount"] = map[string]interface{}{"value": 0.0, "currency": "EUR"}
	ev, err := FromMap(raw)
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if ev.Value != nil {
		t.Errorf("Value = %v, want nil for zero amount", ev.Value)
	}
}

// A stock-perk refund takes its value from the transaction total, not from
// the amount block.
func TestFromMapPerkValueOverride(t *testing.T) {
	raw := buyEvent()
	raw["eventType"] = "STOCK_PERK_REFUNDED"
	raw["amount"] = map[string]interface{}{"value": -15.0, "currency": "EUR"}

	ev, err := FromMap(raw)
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if ev.Type != StockPerkRefunded {
		t.Fatalf("Type = %v, want STOCK_PERK_REFUNDED", ev.Type)
	}
	if ev.Value == nil || *ev.Value != 511.0 {
		t.Errorf("Value = %v, want perk total 511", ev.Value)
	}
}

func TestFromMapCardNote(t *testing.T) {
	raw := map[string]interface{}{
		"timestamp": "2024-02-01T09:00:00+0000",
		"eventType": "card_successful_transaction",
		"status":    "EXECUTED",
		"title":     "Supermarkt",
		"subtitle":  "Kartenzahlung",
	}
	ev, err := FromMap(raw)
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if ev.Type != Removal {
		t.Errorf("Type = %v, want REMOVAL", ev.Type)
	}
	if ev.Note != "card_successful_transaction" {
		t.Errorf("Note = %q, want raw tag", ev.Note)
	}
	if ev.ISIN != "" || ev.Shares != nil || ev.Fees != nil || ev.Taxes != nil {
		t.Error("expected every detail field absent for a bare card event")
	}
}

func TestFromMapTimestampErrors(t *testing.T) {
	for _, raw := range []map[string]interface{}{
		{"eventType": "ORDER_EXECUTED"},
		{"timestamp": "not a timestamp"},
		{"timestamp": 1700000000.0},
	} {
		if _, err := FromMap(raw); err == nil {
			t.Errorf("FromMap(%v) = nil error, want timestamp error", raw)
		}
	}

	// A bare date is still acceptable.
	ev, err := FromMap(map[string]interface{}{"timestamp": "2023-11-23"})
	if err != nil {
		t.Fatalf("FromMap date-only: %v", err)
	}
	if ev.Date != time.Date(2023, 11, 23, 0, 0, 0, 0, time.UTC) {
		t.Errorf("Date = %v", ev.Date)
	}
}

func TestNormalizeAll(t *testing.T) {
	raws := make([]map[string]interface{}, 50)
	for i := range raws {
		raw := buyEvent()
		raw["timestamp"] = fmt.Sprintf("2023-11-%02dT12:00:00+0000", i%28+1)
		raw["title"] = fmt.Sprintf("Order %d", i)
		raws[i] = raw
	}

	out, err := NormalizeAll(context.Background(), raws, 4)
	if err != nil {
		t.Fatalf("NormalizeAll: %v", err)
	}
	if len(out) != len(raws) {
		t.Fatalf("got %d events, want %d", len(out), len(raws))
	}
	for i, ev := range out {
		if want := fmt.Sprintf("Order %d", i); ev.Title != want {
			t.Errorf("out[%d].Title = %q, want %q; order not preserved", i, ev.Title, want)
		}
	}
}

func TestNormalizeAllPropagatesError(t *testing.T) {
	raws := []map[string]interface{}{
		buyEvent(),
		{"eventType": "ORDER_EXECUTED"}, // no timestamp
		buyEvent(),
	}
	if _, err := NormalizeAll(context.Background(), raws, 2); err == nil {
		t.Fatal("NormalizeAll = nil error, want timestamp failure")
	}
}

func TestNormalizeAllEmpty(t *testing.T) {
	out, err := NormalizeAll(context.Background(), nil, 4)
	if err != nil {
		t.Fatalf("NormalizeAll: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("got %d events, want 0", len(out))
	}
}
