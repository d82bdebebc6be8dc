package policy

import "github.com/shopspring/decimal"

// DepositLimitPolicy bounds point purchases per user, in the user's region currency.
type DepositLimitPolicy struct {
	SingleDepositMin decimal.Decimal `json:"single_deposit_min"`
	SingleDepositMax decimal.Decimal `json:"single_deposit_max"`
	DailyDepositMax  decimal.Decimal `json:"daily_deposit_max"`
}

// DefaultDepositLimits returns the default limits (1.00 min, 500.00 single, 1000.00 daily).
func DefaultDepositLimits() DepositLimitPolicy {
	return DepositLimitPolicy{
		SingleDepositMin: decimal.NewFromInt(1),
		SingleDepositMax: decimal.NewFromInt(500),
		DailyDepositMax:  decimal.NewFromInt(1000),
	}
}

// DepositEvaluation holds the result of a deposit limits check.
type DepositEvaluation struct {
	Allowed       bool            `json:"allowed"`
	BreachedLimit string          `json:"breached_limit,omitempty"`
	LimitValue    decimal.Decimal `json:"limit_value,omitempty"`
	Requested     decimal.Decimal `json:"requested,omitempty"`
}

// EvaluateDepositLimits checks a deposit amount against the policy.
// dailyDeposits is the completed-plus-pending total for the current UTC day.
// A zero limit disables that check.
func EvaluateDepositLimits(p DepositLimitPolicy, amount, dailyDeposits decimal.Decimal) DepositEvaluation {
	if !p.SingleDepositMin.IsZero() && amount.LessThan(p.SingleDepositMin) {
		return DepositEvaluation{BreachedLimit: "single_deposit_min", LimitValue: p.SingleDepositMin, Requested: amount}
	}

	if !p.SingleDepositMax.IsZero() && amount.GreaterThan(p.SingleDepositMax) {
		return DepositEvaluation{BreachedLimit: "single_deposit_max", LimitValue: p.SingleDepositMax, Requested: amount}
	}

	if !p.DailyDepositMax.IsZero() {
		total := dailyDeposits.Add(amount)
		if total.GreaterThan(p.DailyDepositMax) {
			return DepositEvaluation{BreachedLimit: "daily_deposit", LimitValue: p.DailyDepositMax, Requested: total}
		}
	}

	return DepositEvaluation{Allowed: true}
}
