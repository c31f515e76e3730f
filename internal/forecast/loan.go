package forecast

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-forecast/internal/domain"
	"github.com/dvloznov/finance-forecast/internal/recurrence"
)

// ErrNonTerminatingLoan is returned for a loan that can never be paid back:
// the planned payment is negative, no payment is planned and no interest
// accrues, or the payment schedule ran past the occurrence cap without
// settling the principal.
var ErrNonTerminatingLoan = errors.New("non-terminating loan")

// interestScale is the number of decimal places interest is rounded to each
// period, which keeps repeated compounding from growing the mantissa.
const interestScale = 10

// LoanState is the amortization state of a loan.
type LoanState int

const (
	LoanActive LoanState = iota
	LoanPaidOff
)

func (s LoanState) String() string {
	if s == LoanPaidOff {
		return "paid_off"
	}
	return "active"
}

// Amortizer tracks the remaining principal of one loan across payments.
type Amortizer struct {
	remaining  decimal.Decimal
	plan       decimal.Decimal
	periodRate decimal.Decimal
	state      LoanState
	paidOffAt  *time.Time
}

// NewAmortizer validates l and returns an amortizer positioned before its
// first payment. A loan with nothing left to repay is paid off at its begin
// date.
func NewAmortizer(l domain.Loan) (*Amortizer, error) {
	periods, err := recurrence.PeriodsPerYear(l.InterestFrequencyType)
	if err != nil {
		return nil, err
	}
	if l.PlanPaymentAmount.IsNegative() {
		return nil, fmt.Errorf("%w: negative plan payment %s", ErrNonTerminatingLoan, l.PlanPaymentAmount)
	}
	if !l.PlanPaymentAmount.IsPositive() && !l.InterestRate.IsPositive() {
		return nil, fmt.Errorf("%w: plan payment %s and interest rate %s",
			ErrNonTerminatingLoan, l.PlanPaymentAmount, l.InterestRate)
	}

	a := &Amortizer{
		remaining:  l.Principal,
		plan:       l.PlanPaymentAmount,
		periodRate: l.InterestRate.Div(decimal.NewFromInt(periods)),
	}
	if !a.remaining.IsPositive() {
		a.state = LoanPaidOff
		paid := l.BeginDate
		a.paidOffAt = &paid
	}
	return a, nil
}

// State reports whether the loan is still being repaid.
func (a *Amortizer) State() LoanState {
	return a.state
}

// Remaining is the outstanding principal.
func (a *Amortizer) Remaining() decimal.Decimal {
	return a.remaining
}

// PaidOffAt is the date of the payment that settled the loan, if any.
func (a *Amortizer) PaidOffAt() *time.Time {
	return a.paidOffAt
}

// Pay accrues one period of interest and makes the payment due on date.
// It returns false once the loan is paid off.
func (a *Amortizer) Pay(date time.Time) (decimal.Decimal, bool) {
	if a.state == LoanPaidOff {
		return decimal.Zero, false
	}

	interest := a.remaining.Mul(a.periodRate).Round(interestScale)
	payment := decimal.Min(a.plan, a.remaining.Add(interest))
	a.remaining = a.remaining.Add(interest).Sub(payment)

	if !a.remaining.IsPositive() {
		a.state = LoanPaidOff
		paid := date
		a.paidOffAt = &paid
	}
	return payment, true
}

// LoanResult is a generator result plus the payoff date, when the loan is
// settled on or before the end of the window.
type LoanResult struct {
	Result
	FullyPaidBackDate *time.Time
}

// GenerateLoan walks the loan's payment dates, threading the remaining
// principal through every occurrence including past ones, and stops as soon
// as the loan is paid back.
func GenerateLoan(l domain.Loan, w Window) (LoanResult, error) {
	amortizer, err := NewAmortizer(l)
	if err != nil {
		return LoanResult{}, fmt.Errorf("GenerateLoan: %s: %w", l.ID, err)
	}
	rule, err := recurrence.Compile(l.Frequency)
	if err != nil {
		return LoanResult{}, fmt.Errorf("GenerateLoan: %s: %w", l.ID, err)
	}

	src := source{kind: domain.SourceLoan, id: l.ID, title: l.Title, description: l.Description}
	cursor := recurrence.NewCursor(rule, l.BeginDate, w.until(l.EndDate))

	var res LoanResult
	for date, ok := cursor.Next(); ok; date, ok = cursor.Next() {
		payment, active := amortizer.Pay(date)
		if !active {
			break
		}
		amount := payment.Mul(decimalOne.Sub(l.SubsidyRate)).Neg()
		total := amount.Mul(decimalOne.Add(l.TaxRate))
		res.add(w, src.transaction(date, amount, l.TaxRate, l.SubsidyRate, total))

		if amortizer.State() == LoanPaidOff {
			break
		}
	}
	if errors.Is(cursor.Err(), recurrence.ErrTooManyOccurrences) {
		return LoanResult{}, fmt.Errorf("GenerateLoan: %s: %w: %v", l.ID, ErrNonTerminatingLoan, cursor.Err())
	}

	res.FullyPaidBackDate = amortizer.PaidOffAt()
	return res, nil
}
