package coach

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propjournal/internal/challenge"
	"propjournal/internal/models"
)

type fakeLLM struct {
	lastSystem string
	lastUser   string
	response   string
	failures   int
	calls      int
}

func (f *fakeLLM) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	if f.calls <= f.failures {
		return "", errors.New("rate limited")
	}
	return f.response, nil
}

func testAcct() *models.ChallengeAccount {
	return &models.ChallengeAccount{
		ID:                     "a1",
		Name:                   "50K Eval",
		AccountSize:            50000,
		ProfitTarget:           3000,
		MaxDrawdown:            2000,
		DailyLossLimit:         1000,
		IsTrailingDrawdown:     true,
		ConsistencyRulePercent: 50,
		Status:                 models.AccountActive,
		Stage:                  models.StageEvaluation,
	}
}

func testTrades() []models.ConsolidatedTrade {
	return []models.ConsolidatedTrade{
		{
			ID:       "t1",
			Symbol:   "NQ",
			Side:     models.SideLong,
			Qty:      2,
			PnL:      400,
			ExitTime: time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC),
			Tags:     []string{"breakout"},
			Notes:    "clean entry",
		},
	}
}

func TestReview_PromptContainsRulesAndTrades(t *testing.T) {
	llm := &fakeLLM{response: "Tighten your stops."}
	c := New(llm, zerolog.Nop())

	progress := challenge.Evaluate(challenge.FromConsolidated(testTrades()), *testAcct(), challenge.DefaultThresholds())
	review, err := c.Review(context.Background(), testAcct(), progress, testTrades())
	require.NoError(t, err)
	assert.Equal(t, "Tighten your stops.", review)

	assert.Contains(t, llm.lastSystem, "trading coach")
	assert.Contains(t, llm.lastUser, "50K Eval")
	assert.Contains(t, llm.lastUser, "consistency rule 50%")
	assert.Contains(t, llm.lastUser, "NQ")
	assert.Contains(t, llm.lastUser, "clean entry")
	assert.Contains(t, llm.lastUser, "(trailing)")
}

func TestReview_RetriesTransientFailures(t *testing.T) {
	llm := &fakeLLM{response: "ok", failures: 2}
	c := New(llm, zerolog.Nop())
	c.retry.InitialDelay = time.Millisecond

	review, err := c.Review(context.Background(), testAcct(), challenge.Progress{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", review)
	assert.Equal(t, 3, llm.calls)
}

func TestReview_ExhaustedRetriesError(t *testing.T) {
	llm := &fakeLLM{failures: 10}
	c := New(llm, zerolog.Nop())
	c.retry.InitialDelay = time.Millisecond

	_, err := c.Review(context.Background(), testAcct(), challenge.Progress{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coach error")
}

func TestBuildPrompt_CapsTradeCount(t *testing.T) {
	trades := make([]models.ConsolidatedTrade, 30)
	for i := range trades {
		trades[i] = models.ConsolidatedTrade{
			ID:       "t" + string(rune('a'+i%26)),
			Symbol:   "NQ",
			Side:     models.SideLong,
			Qty:      1,
			PnL:      10,
			ExitTime: time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC),
		}
	}

	prompt := buildPrompt(testAcct(), challenge.Progress{}, trades)
	assert.Contains(t, prompt, "Recent trades (20 of 30):")
	assert.Equal(t, 20, strings.Count(prompt, "- 2026-03-02 NQ"))
}
