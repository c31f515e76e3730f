package forecast

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-forecast/internal/domain"
	"github.com/dvloznov/finance-forecast/internal/recurrence"
)

// payrollTime is the local time of day a payroll lands in the account.
var payrollTime = domain.ClockTime{Hour: 11, Minute: 30}

// occurrences compiles rule and returns its dates from begin up to the
// earlier of the window end and the record's own end date.
func occurrences(rule domain.FrequencyRule, begin time.Time, end *time.Time, w Window) ([]time.Time, error) {
	compiled, err := recurrence.Compile(rule)
	if err != nil {
		return nil, err
	}
	dates, err := recurrence.Occurrences(compiled, begin, w.until(end))
	if err != nil {
		return nil, err
	}
	return dates, nil
}

// GenerateExpense projects a recurring expense.
func GenerateExpense(e domain.Expense, w Window) (Result, error) {
	dates, err := occurrences(e.Frequency, e.BeginDate, e.EndDate, w)
	if err != nil {
		return Result{}, fmt.Errorf("GenerateExpense: %s: %w", e.ID, err)
	}

	src := source{kind: domain.SourceExpense, id: e.ID, title: e.Title, description: e.Description}
	amount, total := outflow(e.Amount, e.SubsidyRate, e.TaxRate)

	var res Result
	for _, d := range dates {
		res.add(w, src.transaction(d, amount, e.TaxRate, e.SubsidyRate, total))
	}
	return res, nil
}

// GenerateIncome projects a recurring income.
func GenerateIncome(in domain.Income, w Window) (Result, error) {
	dates, err := occurrences(in.Frequency, in.BeginDate, in.EndDate, w)
	if err != nil {
		return Result{}, fmt.Errorf("GenerateIncome: %s: %w", in.ID, err)
	}

	src := source{kind: domain.SourceIncome, id: in.ID, title: in.Title, description: in.Description}
	amount, total := inflow(in.Amount, in.TaxRate)

	var res Result
	for _, d := range dates {
		res.add(w, src.transaction(d, amount, in.TaxRate, decimal.Zero, total))
	}
	return res, nil
}

// GenerateTransfer projects a recurring transfer as seen from accountID. The
// destination account sees an inflow; any other account sees an outflow.
func GenerateTransfer(t domain.Transfer, accountID string, w Window) (Result, error) {
	dates, err := occurrences(t.Frequency, t.BeginDate, t.EndDate, w)
	if err != nil {
		return Result{}, fmt.Errorf("GenerateTransfer: %s: %w", t.ID, err)
	}

	src := source{kind: domain.SourceTransfer, id: t.ID, title: t.Title, description: t.Description}

	var amount, total, subsidy decimal.Decimal
	if accountID == t.DestinationAccountID {
		amount, total = inflow(t.Amount, t.TaxRate)
	} else {
		amount, total = outflow(t.Amount, t.SubsidyRate, t.TaxRate)
		subsidy = t.SubsidyRate
	}

	var res Result
	for _, d := range dates {
		res.add(w, src.transaction(d, amount, t.TaxRate, subsidy, total))
	}
	return res, nil
}

// GeneratePayroll emits at most one transaction, paid on the payroll's end
// date at 11:30 local time. The amount is the gross pay; the difference to
// the net pay is reported as tax so that the total is exactly the net pay.
func GeneratePayroll(p domain.Payroll, w Window) (Result, error) {
	date := payrollTime.On(p.EndDate)
	if date.After(w.To) {
		return Result{}, nil
	}

	taxRate := decimal.Zero
	if !p.GrossPay.IsZero() {
		taxRate = p.GrossPay.Sub(p.NetPay).Div(p.GrossPay)
	}

	src := source{kind: domain.SourcePayroll, id: p.ID, title: p.EmployerName}

	var res Result
	res.add(w, src.transaction(date, p.GrossPay, taxRate, decimal.Zero, p.NetPay))
	return res, nil
}

// GenerateCommute projects one fare per week on the schedule's weekday, at
// its start time.
func GenerateCommute(c domain.CommuteSchedule, w Window) (Result, error) {
	if c.DayOfWeek < time.Sunday || c.DayOfWeek > time.Saturday {
		return Result{}, fmt.Errorf("GenerateCommute: %s: %w: day_of_week %d out of range 0-6",
			c.ID, recurrence.ErrInvalidFrequencyRule, c.DayOfWeek)
	}

	weekday := c.DayOfWeek
	rule := recurrence.Weekly{Step: 1, Weekday: &weekday}
	dates, err := recurrence.Occurrences(rule, c.StartTime.On(c.BeginDate), w.until(c.EndDate))
	if err != nil {
		return Result{}, fmt.Errorf("GenerateCommute: %s: %w", c.ID, err)
	}

	src := source{kind: domain.SourceCommute, id: c.ID, title: c.Title}
	amount, total := outflow(c.FareAmount, c.SubsidyRate, c.TaxRate)

	var res Result
	for _, d := range dates {
		res.add(w, src.transaction(d, amount, c.TaxRate, c.SubsidyRate, total))
	}
	return res, nil
}
