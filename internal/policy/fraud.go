package policy

import (
	"fmt"
	"time"

	"github.com/bingoo/platform/internal/domain"
)

// Fraud thresholds. Both are strict: the count or sum must exceed the limit.
const (
	VelocityWindow    = 5 * time.Minute
	VelocityMaxTx     = 10
	WinningsWindow    = 60 * time.Minute
	WinningsMaxPoints = 1000
)

// FraudSignals holds the raw per-user inputs for fraud evaluation.
type FraudSignals struct {
	RecentTransactions int   `json:"recent_transactions"` // transactions in VelocityWindow
	RecentWinnings     int64 `json:"recent_winnings"`     // points won in WinningsWindow
}

// FraudFinding is one threshold breach.
type FraudFinding struct {
	Type        string        `json:"type"`
	Description string        `json:"description"`
	Window      time.Duration `json:"-"` // lookback the finding was measured over
}

// EvaluateFraud returns the findings for signals; an empty result means nothing to report.
// Findings are advisory and never block the operation that triggered evaluation.
func EvaluateFraud(signals FraudSignals) []FraudFinding {
	var findings []FraudFinding

	if signals.RecentTransactions > VelocityMaxTx {
		findings = append(findings, FraudFinding{
			Type: domain.AlertTooManyTransactions,
			Description: fmt.Sprintf("%d transactions in the last %s (limit %d)",
				signals.RecentTransactions, VelocityWindow, VelocityMaxTx),
			Window: VelocityWindow,
		})
	}

	if signals.RecentWinnings > WinningsMaxPoints {
		findings = append(findings, FraudFinding{
			Type: domain.AlertSuspiciousWinnings,
			Description: fmt.Sprintf("%d points won in the last %s (limit %d)",
				signals.RecentWinnings, WinningsWindow, WinningsMaxPoints),
			Window: WinningsWindow,
		})
	}

	return findings
}
