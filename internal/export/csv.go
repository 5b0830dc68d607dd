// Package export renders normalized events as Portfolio-Performance-style
// account transaction CSV, one semicolon-separated line per bookkeeping entry.
package export

import (
	"strings"

	"github.com/dvloznov/tr-activity/internal/events"
)

// ISO8601 selects RFC 3339 date output instead of a plain date layout.
const ISO8601 = "ISO8601"

// Formatter writes events in one target language ("en" or "de").
type Formatter struct {
	lang       string
	dateLayout string
}

// NewFormatter creates a formatter for the given language. Unknown languages
// fall back to English terms with English number formatting.
func NewFormatter(lang string) *Formatter {
	return &Formatter{lang: lang, dateLayout: "2006-01-02"}
}

// WithDateLayout overrides the date column layout; pass ISO8601 for RFC 3339.
func (f *Formatter) WithDateLayout(layout string) *Formatter {
	f.dateLayout = layout
	return f
}

// Header returns the translated CSV header line.
func (f *Formatter) Header() string {
	cols := []string{
		f.translate("CSVColumn_Date"),
		f.translate("CSVColumn_Type"),
		f.translate("CSVColumn_Value"),
		f.translate("CSVColumn_Note"),
		f.translate("CSVColumn_ISIN"),
		f.translate("CSVColumn_Shares"),
		f.translate("CSVColumn_Fees"),
		f.translate("CSVColumn_Taxes"),
	}
	return strings.Join(cols, ";") + "\n"
}

// Format returns zero, one or two CSV lines for one event. Events without a
// category produce no output. A trade invoice resolves to BUY or SELL by the
// sign of its value; saveback and stock-perk refunds expand into a BUY line
// plus a balancing DEPOSIT line.
func (f *Formatter) Format(ev *events.Event) string {
	if ev.Type == nil {
		return ""
	}

	eventType := ev.Type
	if eventType == events.TradeInvoice {
		if ev.Value == nil {
			return ""
		}
		if *ev.Value < 0 {
			eventType = events.Buy
		} else {
			eventType = events.Sell
		}
	}

	var date string
	if f.dateLayout == ISO8601 {
		date = ev.Date.Format("2006-01-02T15:04:05")
	} else {
		date = ev.Date.Format(f.dateLayout)
	}

	var typeName string
	if resolved, ok := eventType.(events.ResolvedType); ok {
		typeName = f.translate(string(resolved))
	}

	var value string
	if ev.Value != nil {
		value = events.FormatAmount(*ev.Value, f.lang, true)
	} else if eventType == events.Sell {
		value = events.FormatAmount(0, f.lang, true)
	}

	var noteParts []string
	if ev.Note != "" {
		noteParts = append(noteParts, f.translate(ev.Note))
	}
	noteParts = append(noteParts, ev.Title, ev.Subtitle)
	note := strings.Join(noteParts, " - ")

	var shares, fees, taxes string
	if ev.Shares != nil {
		shares = events.FormatAmount(*ev.Shares, f.lang, false)
	}
	if ev.Fees != nil {
		fees = events.FormatAmount(-*ev.Fees, f.lang, true)
	}
	if ev.Taxes != nil {
		taxes = events.FormatAmount(-*ev.Taxes, f.lang, true)
	}

	line := func(typeName, value, isin, shares string) string {
		return strings.Join([]string{date, typeName, value, note, isin, shares, fees, taxes}, ";") + "\n"
	}

	lines := line(typeName, value, ev.ISIN, shares)

	// Saveback and stock-perk refunds book as a purchase funded by an equal
	// deposit.
	if eventType == events.Saveback || eventType == events.StockPerkRefunded {
		if ev.Value == nil {
			return ""
		}
		lines = line(f.translate(string(events.Buy)), value, ev.ISIN, shares)
		deposit := events.FormatAmount(-*ev.Value, f.lang, true)
		lines += line(f.translate(string(events.Deposit)), deposit, "", "")
	}

	return lines
}

// translate maps a message key to the formatter's language, leaving unknown
// keys (e.g. raw card tags without a translation) untouched.
func (f *Formatter) translate(key string) string {
	if table, ok := translations[f.lang]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := translations["en"][key]; ok {
		return msg
	}
	return key
}

var translations = map[string]map[string]string{
	"en": {
		"CSVColumn_Date":   "Date",
		"CSVColumn_Type":   "Type",
		"CSVColumn_Value":  "Value",
		"CSVColumn_Note":   "Note",
		"CSVColumn_ISIN":   "ISIN",
		"CSVColumn_Shares": "Shares",
		"CSVColumn_Fees":   "Fees",
		"CSVColumn_Taxes":  "Taxes",

		"BUY":             "Buy",
		"SELL":            "Sell",
		"DEPOSIT":         "Deposit",
		"REMOVAL":         "Removal",
		"DIVIDEND":        "Dividend",
		"INTEREST":        "Interest",
		"INTEREST_CHARGE": "Interest Charge",
		"FEES":            "Fees",
		"FEES_REFUND":     "Fees Refund",
		"TAXES":           "Taxes",
		"TAX_REFUND":      "Tax Refund",
		"TRANSFER_IN":     "Transfer (Inbound)",
		"TRANSFER_OUT":    "Transfer (Outbound)",

		"card_successful_transaction":    "Card payment",
		"card_successful_atm_withdrawal": "ATM withdrawal",
		"card_order_billed":              "Card order",
		"card_refund":                    "Card refund",
		"card_tr_refund":                 "Card refund",
		"card_failed_transaction":        "Failed card transaction",
	},
	"de": {
		"CSVColumn_Date":   "Datum",
		"CSVColumn_Type":   "Typ",
		"CSVColumn_Value":  "Wert",
		"CSVColumn_Note":   "Notiz",
		"CSVColumn_ISIN":   "ISIN",
		"CSVColumn_Shares": "Stück",
		"CSVColumn_Fees":   "Gebühren",
		"CSVColumn_Taxes":  "Steuern",

		"BUY":             "Kauf",
		"SELL":            "Verkauf",
		"DEPOSIT":         "Einlage",
		"REMOVAL":         "Entnahme",
		"DIVIDEND":        "Dividende",
		"INTEREST":        "Zinsen",
		"INTEREST_CHARGE": "Zinsbelastung",
		"FEES":            "Gebühren",
		"FEES_REFUND":     "Gebührenerstattung",
		"TAXES":           "Steuern",
		"TAX_REFUND":      "Steuerrückerstattung",
		"TRANSFER_IN":     "Umbuchung (Eingang)",
		"TRANSFER_OUT":    "Umbuchung (Ausgang)",

		"card_successful_transaction":    "Kartenzahlung",
		"card_successful_atm_withdrawal": "Geldautomat",
		"card_order_billed":              "Kartenbestellung",
		"card_refund":                    "Kartenerstattung",
		"card_tr_refund":                 "Kartenerstattung",
		"card_failed_transaction":        "Fehlgeschlagene Kartenzahlung",
	},
}
