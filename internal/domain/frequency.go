package domain

// FrequencyType names a recurrence family.
type FrequencyType string

const (
	FrequencyDaily   FrequencyType = "daily"
	FrequencyWeekly  FrequencyType = "weekly"
	FrequencyMonthly FrequencyType = "monthly"
	FrequencyYearly  FrequencyType = "yearly"
)

// FrequencyRule is the stored shape of a recurrence rule. Every field except
// Type is optional; nil means "not set". The recurrence package compiles this
// into a family-specific rule before iterating.
type FrequencyRule struct {
	Type FrequencyType `json:"type"`

	// StepVariable repeats the rule every N units. Defaults to 1.
	StepVariable *int `json:"step_variable,omitempty"`

	// DayOfWeek is 0 (Sunday) through 6 (Saturday).
	DayOfWeek *int `json:"day_of_week,omitempty"`

	// WeekOfMonth is 0 through 4, where 4 means the last week.
	// Only meaningful together with DayOfWeek.
	WeekOfMonth *int `json:"week_of_month,omitempty"`

	// MonthOfYear is 0 (January) through 11 (December).
	// Only meaningful together with DayOfWeek.
	MonthOfYear *int `json:"month_of_year,omitempty"`
}

// Step returns StepVariable, or 1 when it is not set.
func (r FrequencyRule) Step() int {
	if r.StepVariable == nil {
		return 1
	}
	return *r.StepVariable
}

// IntPtr is a small helper for building optional rule fields.
func IntPtr(v int) *int {
	return &v
}
