package models

import "time"

// MT5InvestorAccount is a read-only trading account credential shown to
// prospective customers as proof of performance. The investor password is
// display-only and never validated here.
type MT5InvestorAccount struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	AccountNumber    string `gorm:"type:text;not null;uniqueIndex"` // MT5 account number.
	Broker           string `gorm:"type:text;not null"`             // Broker name.
	Server           string `gorm:"type:text;not null"`             // MT5 server name.
	InvestorPassword string `gorm:"type:text;not null"`             // Read-only credential.

	EAType string `gorm:"type:text;not null"` // EA product the account demonstrates.

	IsActive  bool `gorm:"not null;default:true"` // Whether shown publicly.
	SortOrder int  `gorm:"not null;default:0"`    // Display ordering weight.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TableName keeps the table name used by the hosted schema.
func (MT5InvestorAccount) TableName() string { return "mt5_investor_accounts" }

// EAPerformanceStat holds aggregate performance figures for one EA product.
type EAPerformanceStat struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	EAType string `gorm:"type:text;not null;uniqueIndex"` // EA product type.

	TotalGainPct   float64 `gorm:"type:decimal(10,2);not null;default:0"` // Total gain percent.
	MonthlyAvgPct  float64 `gorm:"type:decimal(10,2);not null;default:0"` // Average monthly return percent.
	MaxDrawdownPct float64 `gorm:"type:decimal(10,2);not null;default:0"` // Maximum drawdown percent.
	WinRatePct     float64 `gorm:"type:decimal(10,2);not null;default:0"` // Winning trade percent.
	ProfitFactor   float64 `gorm:"type:decimal(10,2);not null;default:0"` // Gross profit over gross loss.
	TotalTrades    int     `gorm:"not null;default:0"`                    // Trade count.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TableName keeps the table name used by the hosted schema.
func (EAPerformanceStat) TableName() string { return "ea_performance_stats" }

// EAMonthlyReturn is one month of realized return for an EA product.
type EAMonthlyReturn struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	EAType string `gorm:"type:text;not null;uniqueIndex:idx_ea_monthly_returns_key"` // EA product type.
	Year   int    `gorm:"not null;uniqueIndex:idx_ea_monthly_returns_key"`           // Calendar year.
	Month  int    `gorm:"not null;uniqueIndex:idx_ea_monthly_returns_key"`           // Calendar month (1-12).

	ReturnPct float64 `gorm:"type:decimal(10,2);not null"` // Realized return percent.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TableName keeps the table name used by the hosted schema.
func (EAMonthlyReturn) TableName() string { return "ea_monthly_returns" }

// EAEquityPoint is one point on an EA product's equity curve.
type EAEquityPoint struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	EAType     string    `gorm:"type:text;not null;index"` // EA product type.
	RecordedAt time.Time `gorm:"not null;index"`           // Sample date.
	Equity     float64   `gorm:"type:decimal(12,2);not null"` // Account equity at the sample.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// TableName keeps the table name used by the hosted schema.
func (EAEquityPoint) TableName() string { return "ea_equity_data" }
