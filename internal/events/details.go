package events

import (
	"strings"
	"unicode"
)

// Helpers for walking the loosely-typed detail tree. Every accessor treats a
// missing key or a wrong type as absent, never as an error.

func getString(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func getMap(m map[string]interface{}, key string) map[string]interface{} {
	child, _ := m[key].(map[string]interface{})
	return child
}

func getSlice(m map[string]interface{}, key string) []interface{} {
	s, _ := m[key].([]interface{})
	return s
}

// sections returns the ordered details.sections of a raw event as maps,
// skipping entries of unexpected shape.
func sections(raw map[string]interface{}) []map[string]interface{} {
	items := getSlice(getMap(raw, "details"), "sections")
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if section, ok := item.(map[string]interface{}); ok {
			out = append(out, section)
		}
	}
	return out
}

// sectionData returns the ordered detail entries of one section.
func sectionData(section map[string]interface{}) []map[string]interface{} {
	items := getSlice(section, "data")
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if entry, ok := item.(map[string]interface{}); ok {
			out = append(out, entry)
		}
	}
	return out
}

// parseDetailAmount parses the detail.text of one entry via ParseAmount.
func parseDetailAmount(entry map[string]interface{}) *float64 {
	text := getString(getMap(entry, "detail"), "text")
	v, ok := ParseAmount(text)
	if !ok {
		return nil
	}
	return &v
}

// Detail entry titles that carry the fields we extract, in both of the
// broker's UI languages.
var (
	sharesTitles      = map[string]bool{"Aktien": true, "Anteile": true, "Shares": true, "Debited Shares": true}
	feesTitles        = map[string]bool{"Gebühr": true, "Fee": true}
	totalTitles       = map[string]bool{"Gesamt": true, "Total": true}
	taxesTitles       = map[string]bool{"Steuer": true, "Steuern": true, "Tax": true, "Taxes": true}
	transactionTitles = map[string]bool{"Transaktion": true, "Transaction": true}
	taxSectionTitles  = map[string]bool{"Transaktion": true, "Geschäft": true, "Transaction": true}
)

// parseISIN recovers the instrument identifier. A section action of type
// instrumentDetail wins outright and its payload is taken as-is; otherwise
// the identifier is cut out of the icon path (the segment between the first
// two slashes) and kept only if it is structurally a valid ISIN.
func parseISIN(raw map[string]interface{}) string {
	for _, section := range sections(raw) {
		action := getMap(section, "action")
		if action != nil && getString(action, "type") == "instrumentDetail" {
			return getString(action, "payload")
		}
	}

	isin := getString(raw, "icon")
	isin = isin[strings.Index(isin, "/")+1:]
	if j := strings.Index(isin, "/"); j >= 0 {
		isin = isin[:j]
	} else if len(isin) > 0 {
		// No second separator: drop the trailing character before validating.
		isin = isin[:len(isin)-1]
	}

	if !validISIN(isin) {
		return ""
	}
	return isin
}

// validISIN checks the structural shape only: 12 alphanumeric characters,
// the first two being uppercase letters.
func validISIN(isin string) bool {
	runes := []rune(isin)
	if len(runes) != 12 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return unicode.IsUpper(runes[0]) && unicode.IsUpper(runes[1])
}

// parseSharesAndFees scans transaction sections for share and fee entries.
// Later entries overwrite earlier ones, including overwriting a parsed value
// with an unparseable one; that keeps the single-pass encounter-order
// semantics callers rely on.
func parseSharesAndFees(raw map[string]interface{}) (shares, fees *float64) {
	for _, section := range sections(raw) {
		if !transactionTitles[getString(section, "title")] {
			continue
		}
		for _, entry := range sectionData(section) {
			switch title := getString(entry, "title"); {
			case sharesTitles[title]:
				shares = parseDetailAmount(entry)
			case feesTitles[title]:
				fees = parseDetailAmount(entry)
			}
		}
	}
	return shares, fees
}

// parsePerkValue scans transaction sections for a total entry. Only consulted
// for stock-perk refunds, where the total replaces the event's amount value.
func parsePerkValue(raw map[string]interface{}) *float64 {
	var total *float64
	for _, section := range sections(raw) {
		if !transactionTitles[getString(section, "title")] {
			continue
		}
		for _, entry := range sectionData(section) {
			if totalTitles[getString(entry, "title")] {
				total = parseDetailAmount(entry)
			}
		}
	}
	return total
}

// parseTaxes returns the first tax entry that parses to a value, scanning
// sections and entries in encounter order. Unlike shares and fees this is
// first-match-wins.
func parseTaxes(raw map[string]interface{}) *float64 {
	for _, section := range sections(raw) {
		if !taxSectionTitles[getString(section, "title")] {
			continue
		}
		for _, entry := range sectionData(section) {
			if !taxesTitles[getString(entry, "title")] {
				continue
			}
			if v := parseDetailAmount(entry); v != nil {
				return v
			}
		}
	}
	return nil
}

// parseCardNote keeps the raw tag as a note for card-originated events.
func parseCardNote(raw map[string]interface{}) string {
	if tag := getString(raw, "eventType"); strings.HasPrefix(tag, "card_") {
		return tag
	}
	return ""
}
