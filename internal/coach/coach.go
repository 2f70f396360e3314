package coach

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"propjournal/internal/challenge"
	"propjournal/internal/errors"
	"propjournal/internal/models"
	"propjournal/pkg/utils"
)

const systemPrompt = `You are a trading coach for prop-firm challenge traders.
You are given account rules, current progress metrics, and a sample of recent
consolidated trades. Give specific, practical feedback: what is threatening
the account (drawdown, daily loss, consistency), what is working, and what to
change. Be direct and concise. Do not invent numbers not present in the data.`

// Coach reviews journal progress through an LLM.
type Coach struct {
	llm    LLMClient
	logger zerolog.Logger
	retry  utils.RetryConfig
}

// New creates a Coach backed by the given LLM client.
func New(llm LLMClient, logger zerolog.Logger) *Coach {
	return &Coach{
		llm:    llm,
		logger: logger,
		retry:  utils.DefaultRetryConfig(),
	}
}

// Review asks the LLM for feedback on an account's progress. Transient API
// failures are retried with backoff.
func (c *Coach) Review(ctx context.Context, acct *models.ChallengeAccount, progress challenge.Progress, trades []models.ConsolidatedTrade) (string, error) {
	prompt := buildPrompt(acct, progress, trades)

	response, err := utils.RetryWithResult(ctx, c.retry, func() (string, error) {
		return c.llm.CompleteWithSystem(ctx, systemPrompt, prompt)
	})
	if err != nil {
		return "", errors.NewCoachError("review", err)
	}

	c.logger.Info().
		Str("event", "coach_review").
		Str("account_id", acct.ID).
		Int("trades", len(trades)).
		Msg("Coach review completed")

	return response, nil
}

// maxPromptTrades caps how many trades are included in the prompt.
const maxPromptTrades = 20

func buildPrompt(acct *models.ChallengeAccount, p challenge.Progress, trades []models.ConsolidatedTrade) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Account: %s (size $%.2f, stage %s, status %s)\n", acct.Name, acct.AccountSize, acct.Stage, acct.Status)
	fmt.Fprintf(&b, "Rules: profit target $%.2f, max drawdown $%.2f", acct.ProfitTarget, acct.MaxDrawdown)
	if acct.IsTrailingDrawdown {
		b.WriteString(" (trailing)")
	}
	if acct.DailyLossLimit > 0 {
		fmt.Fprintf(&b, ", daily loss limit $%.2f", acct.DailyLossLimit)
	}
	if acct.ConsistencyRulePercent > 0 {
		fmt.Fprintf(&b, ", consistency rule %d%%", acct.ConsistencyRulePercent)
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Progress:\n")
	fmt.Fprintf(&b, "- Net PnL: $%.2f (%.1f%% of target)\n", p.NetPnL, p.ProfitTargetPct)
	fmt.Fprintf(&b, "- Win rate: %.1f%% over %d trading days\n", p.WinRate, p.TradingDays)
	fmt.Fprintf(&b, "- Drawdown used: $%.2f of $%.2f ($%.2f remaining)\n", p.CurrentDrawdownUsed, acct.MaxDrawdown, p.DDRemaining)
	fmt.Fprintf(&b, "- Worst day: $%.2f (daily loss usage %.1f%%, alert %s)\n", p.DailyLossWorstDay, p.DailyLossUsedPct, p.DailyLossAlert)
	fmt.Fprintf(&b, "- Best day: $%.2f (consistency %.1f%%", p.BestDayPnL, p.ConsistencyPct)
	if p.ConsistencyBreached {
		b.WriteString(", BREACHED")
	}
	b.WriteString(")\n")
	if p.HasHitDrawdownLimit {
		b.WriteString("- DRAWDOWN LIMIT HIT\n")
	}
	b.WriteString("\n")

	n := len(trades)
	if n > maxPromptTrades {
		trades = trades[n-maxPromptTrades:]
	}
	fmt.Fprintf(&b, "Recent trades (%d of %d):\n", len(trades), n)
	for _, t := range trades {
		fmt.Fprintf(&b, "- %s %s %s qty %d pnl $%.2f", t.ExitTime.Format("2006-01-02"), t.Symbol, t.Side, t.Qty, t.PnL)
		if len(t.Tags) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(t.Tags, ", "))
		}
		if t.Notes != "" {
			fmt.Fprintf(&b, " notes: %s", t.Notes)
		}
		b.WriteString("\n")
	}

	return b.String()
}
