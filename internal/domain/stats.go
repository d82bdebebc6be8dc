package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyStat is one day of aggregated ledger activity. Days without activity are zero-valued.
type DailyStat struct {
	Date             string          `json:"date"` // YYYY-MM-DD, UTC
	Deposits         decimal.Decimal `json:"deposits"`
	TransactionCount int64           `json:"transaction_count"`
	PointsSpent      int64           `json:"points_spent"`
	Claims           int64           `json:"claims"`
}

// DashboardStats holds the admin dashboard totals.
type DashboardStats struct {
	TotalUsers          int64           `json:"total_users"`
	ActiveUsers         int64           `json:"active_users"`
	CompletedDeposits   decimal.Decimal `json:"completed_deposits"`
	PendingTransactions int64           `json:"pending_transactions"`
	OpenFraudAlerts     int64           `json:"open_fraud_alerts"`
	GeneratedAt         time.Time       `json:"generated_at"`
}
