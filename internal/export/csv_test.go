package export

import (
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/tr-activity/internal/events"
)

func fptr(v float64) *float64 { return &v }

func TestHeader(t *testing.T) {
	en := NewFormatter("en").Header()
	if en != "Date;Type;Value;Note;ISIN;Shares;Fees;Taxes\n" {
		t.Errorf("english header = %q", en)
	}
	de := NewFormatter("de").Header()
	if de != "Datum;Typ;Wert;Notiz;ISIN;Stück;Gebühren;Steuern\n" {
		t.Errorf("german header = %q", de)
	}
}

func TestFormatBuyFromTradeInvoice(t *testing.T) {
	ev := &events.Event{
		Date:     time.Date(2023, 11, 23, 12, 30, 45, 0, time.UTC),
		Title:    "Siemens",
		Subtitle: "Kauforder",
		Type:     events.TradeInvoice,
		Value:    fptr(-511.0),
		Shares:   fptr(3.63),
		Fees:     fptr(1.0),
		ISIN:     "DE0007236101",
	}

	got := NewFormatter("de").Format(ev)
	want := "2023-11-23;Kauf;-511;Siemens - Kauforder;DE0007236101;3,63;-1;\n"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestFormatSellFromTradeInvoice(t *testing.T) {
	ev := &events.Event{
		Date:     time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Title:    "Siemens",
		Subtitle: "Verkaufsorder",
		Type:     events.TradeInvoice,
		Value:    fptr(610.5),
		Taxes:    fptr(17.77),
		ISIN:     "DE0007236101",
	}

	got := NewFormatter("en").Format(ev)
	want := "2024-01-10;Sell;610.5;Siemens - Verkaufsorder;DE0007236101;;;-17.77\n"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestFormatUncategorizedIsEmpty(t *testing.T) {
	ev := &events.Event{
		Date:  time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Title: "Storniert",
	}
	if got := NewFormatter("en").Format(ev); got != "" {
		t.Errorf("Format = %q, want empty for uncategorized event", got)
	}
}

func TestFormatCardNoteTranslated(t *testing.T) {
	ev := &events.Event{
		Date:     time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
		Title:    "Supermarkt",
		Subtitle: "Kartenzahlung",
		Type:     events.Removal,
		Value:    fptr(-23.5),
		Note:     "card_successful_transaction",
	}

	got := NewFormatter("en").Format(ev)
	if !strings.HasPrefix(got, "2024-02-01;Removal;-23.5;Card payment - Supermarkt - Kartenzahlung;") {
		t.Errorf("Format = %q", got)
	}
}

// A saveback books as a purchase plus a balancing deposit.
func TestFormatSavebackExpansion(t *testing.T) {
	ev := &events.Event{
		Date:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Title:    "Vanguard FTSE All-World",
		Subtitle: "Saveback",
		Type:     events.Saveback,
		Value:    fptr(-15.0),
		Shares:   fptr(0.141),
		ISIN:     "IE00BK5BQT80",
	}

	got := NewFormatter("en").Format(ev)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), got)
	}
	wantBuy := "2024-03-01;Buy;-15;Vanguard FTSE All-World - Saveback;IE00BK5BQT80;0.141;;"
	if lines[0] != wantBuy {
		t.Errorf("buy line = %q, want %q", lines[0], wantBuy)
	}
	wantDeposit := "2024-03-01;Deposit;15;Vanguard FTSE All-World - Saveback;;;;"
	if lines[1] != wantDeposit {
		t.Errorf("deposit line = %q, want %q", lines[1], wantDeposit)
	}
}

func TestFormatISO8601Dates(t *testing.T) {
	ev := &events.Event{
		Date:  time.Date(2024, 3, 1, 14, 5, 6, 0, time.UTC),
		Title: "Zinsen",
		Type:  events.Interest,
		Value: fptr(1.23),
	}
	got := NewFormatter("en").WithDateLayout(ISO8601).Format(ev)
	if !strings.HasPrefix(got, "2024-03-01T14:05:06;Interest;1.23;") {
		t.Errorf("Format = %q", got)
	}
}
