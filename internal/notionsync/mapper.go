package notionsync

import (
	"time"

	infra "github.com/dvloznov/tr-activity/internal/infra/bigquery"
	"github.com/jomei/notionapi"
)

// EventToNotionProperties converts a warehouse event row into the property set
// of the Notion activity database.
func EventToNotionProperties(row *infra.EventRow) notionapi.Properties {
	props := notionapi.Properties{
		"Title": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: row.Title,
					},
				},
			},
		},
		"Date": notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: func() *notionapi.Date {
					d := notionapi.Date(time.Date(
						row.EventDate.Year,
						row.EventDate.Month,
						row.EventDate.Day,
						0, 0, 0, 0, time.UTC,
					))
					return &d
				}(),
			},
		},
		"Event ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: row.EventID,
					},
				},
			},
		},
	}

	// Subtitle (nullable)
	if row.Subtitle.Valid && row.Subtitle.StringVal != "" {
		props["Subtitle"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: row.Subtitle.StringVal,
					},
				},
			},
		}
	}

	// Category - the normalized event type
	if row.Category.Valid && row.Category.StringVal != "" {
		props["Category"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: row.Category.StringVal,
			},
		}
	}

	// Monetary fields (nullable NUMERIC)
	if row.Value != nil {
		f, _ := row.Value.Float64()
		props["Value"] = notionapi.NumberProperty{Number: f}
	}
	if row.Fees != nil {
		f, _ := row.Fees.Float64()
		props["Fees"] = notionapi.NumberProperty{Number: f}
	}
	if row.Shares != nil {
		f, _ := row.Shares.Float64()
		props["Shares"] = notionapi.NumberProperty{Number: f}
	}
	if row.Taxes != nil {
		f, _ := row.Taxes.Float64()
		props["Taxes"] = notionapi.NumberProperty{Number: f}
	}

	// ISIN
	if row.ISIN.Valid && row.ISIN.StringVal != "" {
		props["ISIN"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: row.ISIN.StringVal,
					},
				},
			},
		}
	}

	// Note - translated card transaction note
	if row.Note.Valid && row.Note.StringVal != "" {
		props["Note"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: row.Note.StringVal,
					},
				},
			},
		}
	}

	// Document ID
	if row.DocumentID != "" {
		props["Document ID"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: row.DocumentID,
					},
				},
			},
		}
	}

	// Imported At - use CreatedTS
	props["Imported At"] = notionapi.DateProperty{
		Date: &notionapi.DateObject{
			Start: (*notionapi.Date)(&row.CreatedTS),
		},
	}

	return props
}
