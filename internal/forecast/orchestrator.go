package forecast

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-forecast/internal/domain"
)

// Input is everything a forecast for one account is computed from.
type Input struct {
	AccountID      string
	Window         Window
	CurrentBalance decimal.Decimal
	Records        domain.Records
}

// LoanPayoff reports when a loan is paid back, if that happens within the
// window.
type LoanPayoff struct {
	LoanID            string     `json:"loan_id"`
	FullyPaidBackDate *time.Time `json:"fully_paid_back_date"`
}

// RecordFailure is a record that could not be projected.
type RecordFailure struct {
	Kind     domain.SourceKind `json:"kind"`
	RecordID string            `json:"record_id"`
	Message  string            `json:"error"`
	Err      error             `json:"-"`
}

func newRecordFailure(kind domain.SourceKind, id string, err error) RecordFailure {
	return RecordFailure{Kind: kind, RecordID: id, Message: err.Error(), Err: err}
}

// Forecast is the projected, balanced timeline for one account. Only
// transactions inside the window are returned; transactions skipped between
// now and the window start are used internally and then dropped.
type Forecast struct {
	AccountID       string                        `json:"account_id"`
	From            time.Time                     `json:"from"`
	To              time.Time                     `json:"to"`
	Now             time.Time                     `json:"now"`
	StartingBalance decimal.Decimal               `json:"starting_balance"`
	Transactions    []domain.GeneratedTransaction `json:"transactions"`
	LoanPayoffs     []LoanPayoff                  `json:"loan_payoffs"`
	Failures        []RecordFailure               `json:"failures"`
}

// Generate runs every generator over in.Records, applies the wishlist and
// projects balances. A record that fails is reported in Failures and does not
// stop the others.
func Generate(in Input) *Forecast {
	w := in.Window
	fc := &Forecast{
		AccountID:       in.AccountID,
		From:            w.From,
		To:              w.To,
		Now:             w.Now,
		StartingBalance: in.CurrentBalance,
		Transactions:    []domain.GeneratedTransaction{},
		LoanPayoffs:     []LoanPayoff{},
		Failures:        []RecordFailure{},
	}

	var all Result
	collect := func(kind domain.SourceKind, id string, res Result, err error) {
		if err != nil {
			fc.Failures = append(fc.Failures, newRecordFailure(kind, id, err))
			return
		}
		all.merge(res)
	}

	for _, e := range in.Records.Expenses {
		res, err := GenerateExpense(e, w)
		collect(domain.SourceExpense, e.ID, res, err)
	}
	for _, i := range in.Records.Incomes {
		res, err := GenerateIncome(i, w)
		collect(domain.SourceIncome, i.ID, res, err)
	}
	for _, l := range in.Records.Loans {
		res, err := GenerateLoan(l, w)
		collect(domain.SourceLoan, l.ID, res.Result, err)
		if err == nil {
			fc.LoanPayoffs = append(fc.LoanPayoffs, LoanPayoff{LoanID: l.ID, FullyPaidBackDate: res.FullyPaidBackDate})
		}
	}
	for _, t := range in.Records.Transfers {
		res, err := GenerateTransfer(t, in.AccountID, w)
		collect(domain.SourceTransfer, t.ID, res, err)
	}
	for _, p := range in.Records.Payrolls {
		res, err := GeneratePayroll(p, w)
		collect(domain.SourcePayroll, p.ID, res, err)
	}
	for _, c := range in.Records.Commutes {
		res, err := GenerateCommute(c, w)
		collect(domain.SourceCommute, c.ID, res, err)
	}

	SortTimeline(all.Included)
	SortTimeline(all.Skipped)
	all = ApplyWishlist(in.Records.Wishlist, all, in.CurrentBalance, w)

	timeline := append(all.Included, all.Skipped...)
	for _, tx := range ProjectBalances(timeline, in.CurrentBalance, w.Now) {
		if w.Classify(tx.Date) == Included {
			fc.Transactions = append(fc.Transactions, tx)
		}
	}
	return fc
}
