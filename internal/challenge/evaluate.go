// Package challenge evaluates a challenge account's trade history against
// its prop-firm rule set: trailing/static drawdown, daily loss limit,
// consistency rule, and profit-target progress.
//
// Only closed-trade summaries are available, so the balance peak is computed
// on a closed-trade basis: intra-trade favorable excursions that reversed
// before close are invisible. The approximation errs conservative: it never
// overstates the drawdown room left. Do not change this direction without
// flagging it as a behavior change.
package challenge

import (
	"sort"
	"time"

	"propjournal/internal/models"
)

// Trade is the minimal view the evaluator needs: realized P&L and the time
// the trade closed.
type Trade struct {
	PnL      float64
	ExitTime time.Time
}

// FromRaw adapts raw trade records to the evaluator's input.
func FromRaw(trades []models.RawTrade) []Trade {
	out := make([]Trade, len(trades))
	for i, t := range trades {
		out[i] = Trade{PnL: t.PnL, ExitTime: t.ExitTime}
	}
	return out
}

// FromConsolidated adapts consolidated trades to the evaluator's input.
func FromConsolidated(trades []models.ConsolidatedTrade) []Trade {
	out := make([]Trade, len(trades))
	for i, t := range trades {
		out[i] = Trade{PnL: t.PnL, ExitTime: t.ExitTime}
	}
	return out
}

// AlertLevel classifies daily loss limit usage for display.
type AlertLevel string

const (
	AlertNone   AlertLevel = "none"
	AlertNear   AlertLevel = "near"
	AlertDanger AlertLevel = "danger"
)

// Thresholds holds the alert cut-offs for daily loss usage, in percent.
// Passed as configuration so differently-configured accounts can share the
// evaluator.
type Thresholds struct {
	DailyLossWarnPct   float64
	DailyLossDangerPct float64
}

// DefaultThresholds returns the standard 70/90 alert cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{DailyLossWarnPct: 70, DailyLossDangerPct: 90}
}

// Progress is the full set of metrics derived from one account's trade
// history. It is recomputed fresh on every query, never cached.
type Progress struct {
	NetPnL      float64
	WinRate     float64
	TradingDays int

	PeakBalance         float64
	CurrentDrawdownUsed float64
	MaxTrailingDrawdown float64
	StaticDrawdownUsed  float64
	DDRemaining         float64
	HasHitDrawdownLimit bool

	DailyLossWorstDay float64
	DailyLossUsedPct  float64
	DailyLossAlert    AlertLevel

	BestDayPnL          float64
	ConsistencyPct      float64
	ConsistencyBreached bool

	ProfitTargetPct float64
}

// Evaluate computes the account's progress metrics from an unordered trade
// set. Empty input produces a zero Progress; degenerate rule configuration
// (zero/absent limits) produces zero percentages, never NaN or Inf.
func Evaluate(trades []Trade, acct models.ChallengeAccount, th Thresholds) Progress {
	var p Progress
	if len(trades) == 0 {
		p.DailyLossAlert = AlertNone
		p.DDRemaining = acct.MaxDrawdown
		return p
	}

	ordered := make([]Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].ExitTime.Equal(ordered[j].ExitTime) {
			return ordered[i].ExitTime.Before(ordered[j].ExitTime)
		}
		// Tied exit times would otherwise keep input order and make the
		// peak sweep depend on the permutation.
		return ordered[i].PnL < ordered[j].PnL
	})

	var running, peak, maxDD float64
	var wins int
	for _, t := range ordered {
		running += t.PnL
		if running > peak {
			peak = running
		}
		if dd := peak - running; dd > maxDD {
			maxDD = dd
		}
		if t.PnL > 0 {
			wins++
		}
	}

	p.NetPnL = running
	p.PeakBalance = peak
	p.CurrentDrawdownUsed = peak - running
	p.MaxTrailingDrawdown = maxDD
	p.StaticDrawdownUsed = maxDD
	p.WinRate = float64(wins) / float64(len(ordered)) * 100

	if acct.MaxDrawdown > 0 {
		p.HasHitDrawdownLimit = p.CurrentDrawdownUsed >= acct.MaxDrawdown
		p.DDRemaining = acct.MaxDrawdown - p.CurrentDrawdownUsed
		if p.DDRemaining < 0 {
			p.DDRemaining = 0
		}
	}

	daily := DailyPnL(ordered)
	p.TradingDays = len(daily)
	p.BestDayPnL, p.DailyLossWorstDay = bestAndWorstDay(daily)

	p.DailyLossUsedPct = dailyLossUsagePct(p.DailyLossWorstDay, acct.DailyLossLimit)
	p.DailyLossAlert = classifyDailyLoss(p.DailyLossUsedPct, th)

	p.ConsistencyPct = consistencyPct(p.BestDayPnL, acct.ProfitTarget)
	if acct.ConsistencyRulePercent > 0 {
		p.ConsistencyBreached = p.ConsistencyPct > float64(acct.ConsistencyRulePercent)
	}

	p.ProfitTargetPct = profitTargetPct(p.NetPnL, acct.ProfitTarget)

	return p
}

// dailyLossUsagePct expresses the worst losing day as a share of the daily
// loss limit. Winning-only histories and absent limits use 0.
func dailyLossUsagePct(worstDay, limit float64) float64 {
	if limit <= 0 || worstDay >= 0 {
		return 0
	}
	return -worstDay / limit * 100
}

func classifyDailyLoss(usedPct float64, th Thresholds) AlertLevel {
	switch {
	case th.DailyLossDangerPct > 0 && usedPct >= th.DailyLossDangerPct:
		return AlertDanger
	case th.DailyLossWarnPct > 0 && usedPct >= th.DailyLossWarnPct:
		return AlertNear
	default:
		return AlertNone
	}
}

// consistencyPct is the best single day's share of the profit target.
// Defined as 0 when there is no target rather than dividing by zero.
func consistencyPct(bestDay, profitTarget float64) float64 {
	if profitTarget <= 0 || bestDay <= 0 {
		return 0
	}
	return bestDay / profitTarget * 100
}

// profitTargetPct is net P&L as a share of the profit target, clamped to
// [0, 100] for display.
func profitTargetPct(netPnL, profitTarget float64) float64 {
	if profitTarget <= 0 {
		return 0
	}
	pct := netPnL / profitTarget * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
