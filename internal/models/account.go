package models

import "time"

// AccountStatus represents the lifecycle state of a challenge account.
type AccountStatus string

const (
	AccountActive AccountStatus = "active"
	AccountPassed AccountStatus = "passed"
	AccountFailed AccountStatus = "failed"
	AccountPaused AccountStatus = "paused"
)

// AccountStage represents which phase of a prop-firm program the account is in.
type AccountStage string

const (
	StageEvaluation AccountStage = "evaluation"
	StagePhase2     AccountStage = "phase2"
	StageFunded     AccountStage = "funded"
)

// Consistency rule percentages supported by prop firms. Zero means the
// account has no consistency rule.
const (
	ConsistencyNone = 0
	Consistency30   = 30
	Consistency50   = 50
)

// ChallengeAccount is one prop-firm evaluation or funded account with its
// rule set. Rule fields may be edited, but edits never retroactively change
// which trades are linked.
type ChallengeAccount struct {
	ID                     string
	Name                   string
	AccountSize            float64
	ProfitTarget           float64 // 0 means no profit target
	MaxDrawdown            float64 // 0 means no drawdown limit
	DailyLossLimit         float64 // 0 means no daily loss limit
	MinTradingDays         int
	MaxTradingDays         int
	IsTrailingDrawdown     bool
	ConsistencyRulePercent int // 0, 30 or 50
	Status                 AccountStatus
	Stage                  AccountStage
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// ValidStatus reports whether s is a known account status.
func ValidStatus(s AccountStatus) bool {
	switch s {
	case AccountActive, AccountPassed, AccountFailed, AccountPaused:
		return true
	}
	return false
}

// ValidStage reports whether s is a known account stage.
func ValidStage(s AccountStage) bool {
	switch s {
	case StageEvaluation, StagePhase2, StageFunded:
		return true
	}
	return false
}

// ValidConsistencyPercent reports whether p is a supported consistency rule.
func ValidConsistencyPercent(p int) bool {
	return p == ConsistencyNone || p == Consistency30 || p == Consistency50
}
