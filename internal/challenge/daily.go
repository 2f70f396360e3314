package challenge

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// dayKey buckets a trade into its UTC calendar date.
const dayLayout = "2006-01-02"

// DailyPnL sums trade P&L per UTC calendar day, keyed by the exit date.
func DailyPnL(trades []Trade) map[string]float64 {
	daily := make(map[string]float64, len(trades))
	for _, t := range trades {
		daily[t.ExitTime.UTC().Format(dayLayout)] += t.PnL
	}
	return daily
}

func bestAndWorstDay(daily map[string]float64) (best, worst float64) {
	first := true
	for _, pnl := range daily {
		if first {
			best, worst = pnl, pnl
			first = false
			continue
		}
		if pnl > best {
			best = pnl
		}
		if pnl < worst {
			worst = pnl
		}
	}
	return best, worst
}

// DailyStats summarizes the distribution of daily P&L for the report view.
type DailyStats struct {
	Days      int
	MeanPnL   float64
	StdDevPnL float64
	BestDay   float64
	WorstDay  float64
}

// Daily computes summary statistics over per-day P&L. Zero trades yield a
// zero value; a single day yields a zero standard deviation.
func Daily(trades []Trade) DailyStats {
	daily := DailyPnL(trades)
	if len(daily) == 0 {
		return DailyStats{}
	}

	pnls := make([]float64, 0, len(daily))
	for _, pnl := range daily {
		pnls = append(pnls, pnl)
	}
	sort.Float64s(pnls)

	s := DailyStats{
		Days:     len(pnls),
		MeanPnL:  stat.Mean(pnls, nil),
		BestDay:  pnls[len(pnls)-1],
		WorstDay: pnls[0],
	}
	if len(pnls) > 1 {
		s.StdDevPnL = stat.StdDev(pnls, nil)
	}
	return s
}
