package events

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// numberFormat describes one regional numeric convention by its thousands
// group symbol and decimal symbol.
type numberFormat struct {
	group   string
	decimal string
}

var (
	englishFormat = numberFormat{group: ",", decimal: "."}
	germanFormat  = numberFormat{group: ".", decimal: ","}
)

// amountDecoration matches everything that is not part of a number: currency
// symbols, whitespace, letters.
var amountDecoration = regexp.MustCompile(`[^0-9,.\-]`)

// ParseAmount parses a detail text that holds an amount in either the English
// or the German numeric convention. Decoration characters are stripped first.
// When the cleaned text contains no period the English convention is tried
// first, otherwise the German one; the first convention that parses strictly
// wins. This trial order determines the result for ambiguous inputs such as
// "9.400" and must not be changed.
//
// A value of exactly zero reports ok=false: downstream, "no data" and "zero"
// are the same thing.
func ParseAmount(text string) (float64, bool) {
	cleaned := amountDecoration.ReplaceAllString(text, "")

	order := [2]numberFormat{germanFormat, englishFormat}
	if !strings.Contains(cleaned, ".") {
		order = [2]numberFormat{englishFormat, germanFormat}
	}

	for _, format := range order {
		v, err := format.parse(cleaned)
		if err != nil {
			continue
		}
		if v == 0 {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// parse reads s under this convention. When the group symbol occurs in s the
// parse is strict: s must round-trip to the canonical grouped rendering of
// the parsed value (optionally with trailing fraction zeros), otherwise the
// grouping belongs to the other convention and the parse fails.
func (f numberFormat) parse(s string) (float64, error) {
	normalized := strings.ReplaceAll(s, f.group, "")
	normalized = strings.ReplaceAll(normalized, f.decimal, ".")

	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}

	if strings.Contains(s, f.group) {
		proper := f.format(v, false)
		if s != proper && strings.TrimRight(s, "0") != proper+f.decimal {
			return 0, fmt.Errorf("parse %q: grouping does not match %q", s, proper)
		}
	}

	return v, nil
}

// format renders v under this convention with thousands grouping. With
// quantize set, the fraction is rounded to at most three digits (the default
// CLDR decimal pattern); otherwise all significant fraction digits are kept.
func (f numberFormat) format(v float64, quantize bool) string {
	var s string
	if quantize {
		s = strconv.FormatFloat(v, 'f', 3, 64)
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	} else {
		s = strconv.FormatFloat(v, 'f', -1, 64)
	}

	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(f.group)
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteString(f.decimal)
		b.WriteString(fracPart)
	}
	return b.String()
}

// FormatAmount renders v in the numeric convention of lang ("de" gets the
// German convention, anything else the English one). Used by the CSV
// exporter; quantize limits the fraction to three digits.
func FormatAmount(v float64, lang string, quantize bool) string {
	if lang == "de" {
		return germanFormat.format(v, quantize)
	}
	return englishFormat.format(v, quantize)
}
