package pipeline

import (
	"fmt"
	"math/big"
	"strconv"
	"time"

	bigquerylib "cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/tr-activity/internal/events"
	infra "github.com/dvloznov/tr-activity/internal/infra/bigquery"
	"github.com/google/uuid"
)

// eventsToRows maps normalized events onto warehouse rows for one run.
func eventsToRows(evs []*events.Event, documentID, normalizeRunID string) ([]*infra.EventRow, error) {
	rows := make([]*infra.EventRow, 0, len(evs))
	now := time.Now()

	for i, ev := range evs {
		if ev == nil {
			return nil, fmt.Errorf("eventsToRows: event %d is nil", i)
		}

		row := &infra.EventRow{
			EventID:        uuid.NewString(),
			DocumentID:     documentID,
			NormalizeRunID: normalizeRunID,
			EventDate:      civil.DateOf(ev.Date),
			EventTimestamp: ev.Date,
			Title:          ev.Title,
			Subtitle:       nullString(ev.Subtitle),
			ISIN:           nullString(ev.ISIN),
			Note:           nullString(ev.Note),
			Value:          ratFromFloat(ev.Value),
			Fees:           ratFromFloat(ev.Fees),
			Shares:         ratFromFloat(ev.Shares),
			Taxes:          ratFromFloat(ev.Taxes),
			CreatedTS:      now,
			Raw:            bigquerylib.NullJSON{Valid: false},
		}

		if ev.Type != nil {
			row.Category = nullString(ev.Type.String())
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// countCategorized reports how many events resolved to a semantic category.
func countCategorized(evs []*events.Event) int {
	n := 0
	for _, ev := range evs {
		if ev != nil && ev.Type != nil {
			n++
		}
	}
	return n
}

// ratFromFloat converts an optional float into a NUMERIC-compatible rational.
// The decimal string round-trip keeps the value at the precision the parser
// produced instead of the full binary expansion.
func ratFromFloat(v *float64) *big.Rat {
	if v == nil {
		return nil
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(*v, 'f', -1, 64))
	if !ok {
		return nil
	}
	return r
}

func nullString(s string) bigquerylib.NullString {
	if s == "" {
		return bigquerylib.NullString{}
	}
	return bigquerylib.NullString{StringVal: s, Valid: true}
}
