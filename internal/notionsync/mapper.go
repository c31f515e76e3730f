package notionsync

import (
	"time"

	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-forecast/internal/domain"
)

// Property names of the forecast database.
const (
	propName          = "Name"
	propTransactionID = "Transaction ID"
	propAccountID     = "Account ID"
	propSource        = "Source"
	propSourceID      = "Source ID"
	propDate          = "Date"
	propAmount        = "Amount"
	propTotalAmount   = "Total Amount"
	propTaxRate       = "Tax Rate"
	propSubsidyRate   = "Subsidy Rate"
	propBalance       = "Balance"
	propDescription   = "Description"
)

// TransactionToProperties maps a projected transaction to a page of the
// forecast database.
func TransactionToProperties(accountID string, tx domain.GeneratedTransaction) notionapi.Properties {
	title := tx.Title
	if title == "" {
		title = string(tx.SourceKind)
	}

	props := notionapi.Properties{
		propName: notionapi.TitleProperty{
			Title: richText(title),
		},
		propTransactionID: notionapi.RichTextProperty{RichText: richText(tx.ID)},
		propAccountID:     notionapi.RichTextProperty{RichText: richText(accountID)},
		propSource: notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(tx.SourceKind)},
		},
		propSourceID:    notionapi.RichTextProperty{RichText: richText(tx.SourceID)},
		propDate:        dateProperty(tx.Date),
		propAmount:      number(tx.Amount),
		propTotalAmount: number(tx.TotalAmount),
		propTaxRate:     number(tx.TaxRate),
		propSubsidyRate: number(tx.SubsidyRate),
	}

	if tx.Balance.Valid {
		props[propBalance] = number(tx.Balance.Decimal)
	}
	if tx.Description != "" {
		props[propDescription] = notionapi.RichTextProperty{RichText: richText(tx.Description)}
	}

	return props
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: s},
		},
	}
}

// number converts to float64 for Notion's number property; Notion stores
// doubles so sub-cent precision is not preserved.
func number(d decimal.Decimal) notionapi.NumberProperty {
	return notionapi.NumberProperty{Number: d.InexactFloat64()}
}

func dateProperty(t time.Time) notionapi.DateProperty {
	d := notionapi.Date(t)
	return notionapi.DateProperty{
		Date: &notionapi.DateObject{Start: &d},
	}
}

// extractText reads the plain text of a rich text or title property.
// Returns empty string if the property is missing.
func extractText(page notionapi.Page, name string) string {
	switch prop := page.Properties[name].(type) {
	case *notionapi.RichTextProperty:
		if len(prop.RichText) > 0 {
			return prop.RichText[0].PlainText
		}
	case *notionapi.TitleProperty:
		if len(prop.Title) > 0 {
			return prop.Title[0].PlainText
		}
	}
	return ""
}
