package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-forecast/internal/domain"
)

// numericScale is the number of decimal digits a BigQuery NUMERIC keeps.
const numericScale = 9

func ratToDecimal(r *big.Rat) decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigRat(r, numericScale)
}

func decimalToRat(d decimal.Decimal) *big.Rat {
	return d.Round(numericScale).Rat()
}

func nullDecimalToRat(d decimal.NullDecimal) *big.Rat {
	if !d.Valid {
		return nil
	}
	return decimalToRat(d.Decimal)
}

func nullInt(v bigquery.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullTime(v bigquery.NullTimestamp) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Timestamp
	return &t
}

func nullDate(v bigquery.NullDate) *time.Time {
	if !v.Valid {
		return nil
	}
	t := dateIn(v.Date)
	return &t
}

// dateIn converts a DATE column to midnight UTC.
func dateIn(d civil.Date) time.Time {
	return d.In(time.UTC)
}

func (f FrequencyColumns) toDomain() domain.FrequencyRule {
	return domain.FrequencyRule{
		Type:         domain.FrequencyType(f.FrequencyType),
		StepVariable: nullInt(f.StepVariable),
		DayOfWeek:    nullInt(f.DayOfWeek),
		WeekOfMonth:  nullInt(f.WeekOfMonth),
		MonthOfYear:  nullInt(f.MonthOfYear),
	}
}

func (r *ExpenseRow) toDomain() domain.Expense {
	return domain.Expense{
		ID:          r.ExpenseID,
		AccountID:   r.AccountID,
		Title:       r.Title,
		Description: r.Description.StringVal,
		Amount:      ratToDecimal(r.Amount),
		TaxRate:     ratToDecimal(r.TaxRate),
		SubsidyRate: ratToDecimal(r.SubsidyRate),
		BeginDate:   r.BeginTS,
		EndDate:     nullTime(r.EndTS),
		Frequency:   r.FrequencyColumns.toDomain(),
	}
}

func (r *IncomeRow) toDomain() domain.Income {
	return domain.Income{
		ID:          r.IncomeID,
		AccountID:   r.AccountID,
		Title:       r.Title,
		Description: r.Description.StringVal,
		Amount:      ratToDecimal(r.Amount),
		TaxRate:     ratToDecimal(r.TaxRate),
		BeginDate:   r.BeginTS,
		EndDate:     nullTime(r.EndTS),
		Frequency:   r.FrequencyColumns.toDomain(),
	}
}

func (r *LoanRow) toDomain() domain.Loan {
	return domain.Loan{
		ID:                    r.LoanID,
		AccountID:             r.AccountID,
		Title:                 r.Title,
		Description:           r.Description.StringVal,
		Principal:             ratToDecimal(r.Principal),
		PlanPaymentAmount:     ratToDecimal(r.PlanPaymentAmount),
		InterestRate:          ratToDecimal(r.InterestRate),
		InterestFrequencyType: domain.FrequencyType(r.InterestFrequencyType),
		TaxRate:               ratToDecimal(r.TaxRate),
		SubsidyRate:           ratToDecimal(r.SubsidyRate),
		BeginDate:             r.BeginTS,
		EndDate:               nullTime(r.EndTS),
		Frequency:             r.FrequencyColumns.toDomain(),
	}
}

func (r *TransferRow) toDomain() domain.Transfer {
	return domain.Transfer{
		ID:                   r.TransferID,
		Title:                r.Title,
		Description:          r.Description.StringVal,
		Amount:               ratToDecimal(r.Amount),
		TaxRate:              ratToDecimal(r.TaxRate),
		SubsidyRate:          ratToDecimal(r.SubsidyRate),
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
		BeginDate:            r.BeginTS,
		EndDate:              nullTime(r.EndTS),
		Frequency:            r.FrequencyColumns.toDomain(),
	}
}

func (r *PayrollRow) toDomain() domain.Payroll {
	return domain.Payroll{
		ID:           r.PayrollID,
		AccountID:    r.AccountID,
		EmployerName: r.EmployerName,
		GrossPay:     ratToDecimal(r.GrossPay),
		NetPay:       ratToDecimal(r.NetPay),
		BeginDate:    dateIn(r.BeginDate),
		EndDate:      dateIn(r.EndDate),
	}
}

func (r *CommuteScheduleRow) toDomain() domain.CommuteSchedule {
	return domain.CommuteSchedule{
		ID:          r.CommuteID,
		AccountID:   r.AccountID,
		Title:       r.Title,
		FareAmount:  ratToDecimal(r.FareAmount),
		TaxRate:     ratToDecimal(r.TaxRate),
		SubsidyRate: ratToDecimal(r.SubsidyRate),
		DayOfWeek:   time.Weekday(r.DayOfWeek),
		StartTime:   domain.ClockTime{Hour: r.StartTime.Hour, Minute: r.StartTime.Minute},
		BeginDate:   dateIn(r.BeginDate),
		EndDate:     nullDate(r.EndDate),
	}
}

func (r *WishlistItemRow) toDomain() domain.WishlistItem {
	return domain.WishlistItem{
		ID:            r.WishlistItemID,
		AccountID:     r.AccountID,
		Title:         r.Title,
		Description:   r.Description.StringVal,
		Amount:        ratToDecimal(r.Amount),
		TaxRate:       ratToDecimal(r.TaxRate),
		DateAvailable: nullDate(r.DateAvailable),
		Priority:      int(r.Priority.Int64),
	}
}

// NewProjectedTransactionRow flattens a projected transaction for insertion.
func NewProjectedTransactionRow(accountID string, from, to time.Time, tx domain.GeneratedTransaction, created time.Time) *ProjectedTransactionRow {
	return &ProjectedTransactionRow{
		TransactionID: tx.ID,
		AccountID:     accountID,
		SourceKind:    string(tx.SourceKind),
		SourceID:      tx.SourceID,
		Title:         tx.Title,
		Description:   tx.Description,
		TransactionTS: tx.Date,
		Amount:        decimalToRat(tx.Amount),
		TaxRate:       decimalToRat(tx.TaxRate),
		SubsidyRate:   decimalToRat(tx.SubsidyRate),
		TotalAmount:   decimalToRat(tx.TotalAmount),
		Balance:       nullDecimalToRat(tx.Balance),
		WindowFrom:    civil.DateOf(from),
		WindowTo:      civil.DateOf(to),
		CreatedTS:     created,
	}
}
