package insights

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-forecast/internal/forecast"
)

// topOutflows is how many of the largest outflow sources are listed in the prompt.
const topOutflows = 5

const instructions = "You are a personal finance assistant.\n\n" +
	"Task:\n" +
	"- Summarize the balance forecast below for the account owner.\n" +
	"- Mention the ending balance, the lowest point and when it happens.\n" +
	"- Point out if the balance goes negative and which obligations drive it.\n" +
	"- Mention loans that get paid off within the window.\n" +
	"- Use at most 6 sentences of plain text.\n\n" +
	"Do NOT use Markdown, bullet points or code fences.\n" +
	"Do NOT invent numbers that are not in the facts.\n"

type sourceTotal struct {
	title string
	total decimal.Decimal
}

// BuildPrompt renders the facts of a forecast as a prompt.
func BuildPrompt(fc *forecast.Forecast) string {
	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\nFacts:\n")

	fmt.Fprintf(&b, "- Account: %s\n", fc.AccountID)
	fmt.Fprintf(&b, "- Window: %s to %s\n", fc.From.Format(time.DateOnly), fc.To.Format(time.DateOnly))
	fmt.Fprintf(&b, "- Starting balance: %s\n", fc.StartingBalance.StringFixed(2))
	fmt.Fprintf(&b, "- Ending balance: %s\n", fc.EndingBalance().StringFixed(2))

	if low, at, ok := fc.LowestBalance(); ok {
		fmt.Fprintf(&b, "- Lowest balance: %s on %s\n", low.StringFixed(2), at.Format(time.DateOnly))
	}

	in, out := fc.Totals()
	fmt.Fprintf(&b, "- Money in: %s\n", in.StringFixed(2))
	fmt.Fprintf(&b, "- Money out: %s\n", out.StringFixed(2))
	fmt.Fprintf(&b, "- Projected transactions: %d\n", len(fc.Transactions))

	if outflows := largestOutflows(fc); len(outflows) > 0 {
		b.WriteString("- Largest outflows:\n")
		for _, o := range outflows {
			fmt.Fprintf(&b, "  - %s: %s\n", o.title, o.total.StringFixed(2))
		}
	}

	for _, p := range fc.LoanPayoffs {
		if p.FullyPaidBackDate != nil {
			fmt.Fprintf(&b, "- Loan %s paid off on %s\n", p.LoanID, p.FullyPaidBackDate.Format(time.DateOnly))
		} else {
			fmt.Fprintf(&b, "- Loan %s still open at the end of the window\n", p.LoanID)
		}
	}

	if n := len(fc.Failures); n > 0 {
		fmt.Fprintf(&b, "- %d records could not be projected and are missing from the forecast\n", n)
	}

	return b.String()
}

// largestOutflows groups outflows by source and returns the biggest ones,
// largest first.
func largestOutflows(fc *forecast.Forecast) []sourceTotal {
	index := map[string]int{}
	var totals []sourceTotal

	for _, tx := range fc.Transactions {
		if !tx.TotalAmount.IsNegative() {
			continue
		}
		key := string(tx.SourceKind) + "/" + tx.SourceID
		i, ok := index[key]
		if !ok {
			title := tx.Title
			if title == "" {
				title = key
			}
			i = len(totals)
			index[key] = i
			totals = append(totals, sourceTotal{title: title})
		}
		totals[i].total = totals[i].total.Sub(tx.TotalAmount)
	}

	slices.SortStableFunc(totals, func(a, b sourceTotal) int {
		return b.total.Cmp(a.total)
	})
	if len(totals) > topOutflows {
		totals = totals[:topOutflows]
	}
	return totals
}
