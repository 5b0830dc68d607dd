package events

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Event is one normalized timeline event. Numeric fields are nil when the raw
// event carried no usable value; a parsed zero counts as no value.
type Event struct {
	Date     time.Time `json:"date"`
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle"`
	Type     EventType `json:"type,omitempty"`

	Value  *float64 `json:"value,omitempty"`
	Fees   *float64 `json:"fees,omitempty"`
	Shares *float64 `json:"shares,omitempty"`
	Taxes  *float64 `json:"taxes,omitempty"`

	ISIN string `json:"isin,omitempty"`
	Note string `json:"note,omitempty"`
}

// timestamp layouts accepted after truncating to 19 characters.
const (
	timestampLayout = "2006-01-02T15:04:05"
	dateOnlyLayout  = "2006-01-02"
)

// parseTimestamp reads the leading seconds-precision portion of an
// ISO-8601-like timestamp. This is the one field whose absence is an error.
func parseTimestamp(raw map[string]interface{}) (time.Time, error) {
	ts := getString(raw, "timestamp")
	if ts == "" {
		return time.Time{}, fmt.Errorf("event has no timestamp")
	}
	if len(ts) > 19 {
		ts = ts[:19]
	}
	t, err := time.Parse(timestampLayout, ts)
	if err == nil {
		return t, nil
	}
	if t, dateErr := time.Parse(dateOnlyLayout, ts); dateErr == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: %w", ts, err)
}

// FromMap converts one raw timeline event into a normalized Event.
//
// Missing or malformed substructure degrades to absent fields; only an
// unparseable timestamp fails the conversion, since every record must be
// orderable by date.
func FromMap(raw map[string]interface{}) (*Event, error) {
	date, err := parseTimestamp(raw)
	if err != nil {
		return nil, err
	}

	eventType := Classify(getString(raw, "eventType"), getString(raw, "status"))

	var value *float64
	if v, ok := getMap(raw, "amount")["value"].(float64); ok && v != 0 {
		value = &v
	}
	if eventType == StockPerkRefunded {
		value = parsePerkValue(raw)
	}

	shares, fees := parseSharesAndFees(raw)

	return &Event{
		Date:     date,
		Title:    getString(raw, "title"),
		Subtitle: getString(raw, "subtitle"),
		Type:     eventType,
		Value:    value,
		Fees:     fees,
		Shares:   shares,
		Taxes:    parseTaxes(raw),
		ISIN:     parseISIN(raw),
		Note:     parseCardNote(raw),
	}, nil
}

// NormalizeAll converts a batch of raw events across a bounded worker pool.
// Conversions are independent, so order of execution does not matter; the
// result slice correlates 1:1 with the input by index. The first conversion
// error cancels the batch.
func NormalizeAll(ctx context.Context, raws []map[string]interface{}, workers int) ([]*Event, error) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(raws) {
		workers = len(raws)
	}

	out := make([]*Event, len(raws))
	indices := make(chan int)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				ev, err := FromMap(raws[i])
				if err != nil {
					setErr(fmt.Errorf("event %d: %w", i, err))
					continue
				}
				out[i] = ev
			}
		}()
	}

feed:
	for i := range raws {
		select {
		case indices <- i:
		case <-ctx.Done():
			setErr(ctx.Err())
			break feed
		}
	}
	close(indices)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
