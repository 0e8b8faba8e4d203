package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/riskibarqy/prediction-settlement/internal/domain/fixture"
	"github.com/riskibarqy/prediction-settlement/internal/domain/prediction"
)

// SettlementDecision is the outcome of evaluating one prediction against the
// current fixture state.
type SettlementDecision struct {
	Result      prediction.Result
	Explanation string
}

func (d SettlementDecision) IsTerminal() bool {
	return d.Result.IsTerminal()
}

// EvaluateSettlement decides a prediction from the fixture state alone. It is
// pure: the same inputs always yield the same decision. Abandoned fixtures
// are voided by the caller, not here.
func EvaluateSettlement(t prediction.Type, current fixture.Score, halfTime *fixture.Score, status fixture.Status) SettlementDecision {
	if !t.IsStructured() {
		return evaluateLegacy(t.Legacy, current, status)
	}

	goals := current.Total()
	periodFinished := status.IsFinished()
	if t.Period == prediction.PeriodFirstHalf {
		periodFinished = status.IsHalfTimeOrLater()
		if periodFinished {
			if halfTime == nil {
				return evaluateUnknownHalfTime(t, current)
			}
			goals = halfTime.Total()
		}
	}

	exceeded := decimal.NewFromInt(int64(goals)).GreaterThan(t.Threshold)
	switch t.Direction {
	case prediction.DirectionOver:
		if exceeded {
			return SettlementDecision{
				Result:      prediction.ResultWon,
				Explanation: fmt.Sprintf("%d goals exceed %s", goals, t.Threshold),
			}
		}
		if periodFinished {
			return SettlementDecision{
				Result:      prediction.ResultLost,
				Explanation: fmt.Sprintf("%s finished with %d goals, not over %s", t.Period, goals, t.Threshold),
			}
		}
	case prediction.DirectionUnder:
		if exceeded {
			return SettlementDecision{
				Result:      prediction.ResultLost,
				Explanation: fmt.Sprintf("%d goals exceed %s", goals, t.Threshold),
			}
		}
		if periodFinished {
			return SettlementDecision{
				Result:      prediction.ResultWon,
				Explanation: fmt.Sprintf("%s finished with %d goals, under %s", t.Period, goals, t.Threshold),
			}
		}
	default:
		return SettlementDecision{
			Result:      prediction.ResultPending,
			Explanation: fmt.Sprintf("unknown direction %q", t.Direction),
		}
	}

	return SettlementDecision{
		Result:      prediction.ResultPending,
		Explanation: fmt.Sprintf("%d goals against %s, %s still in play", goals, t.Threshold, t.Period),
	}
}

// evaluateUnknownHalfTime handles a first-half prediction whose half-time
// score was never observed. The current aggregate is an upper bound on the
// first-half goals, so a total at or below the threshold still decides it.
func evaluateUnknownHalfTime(t prediction.Type, current fixture.Score) SettlementDecision {
	goals := current.Total()
	if !decimal.NewFromInt(int64(goals)).GreaterThan(t.Threshold) {
		switch t.Direction {
		case prediction.DirectionOver:
			return SettlementDecision{
				Result:      prediction.ResultLost,
				Explanation: fmt.Sprintf("first half had at most %d goals, not over %s", goals, t.Threshold),
			}
		case prediction.DirectionUnder:
			return SettlementDecision{
				Result:      prediction.ResultWon,
				Explanation: fmt.Sprintf("first half had at most %d goals, under %s", goals, t.Threshold),
			}
		}
	}
	return SettlementDecision{
		Result:      prediction.ResultPending,
		Explanation: "first half finished but half-time score is unknown",
	}
}

func evaluateLegacy(kind string, score fixture.Score, status fixture.Status) SettlementDecision {
	if !status.IsFinished() {
		return SettlementDecision{
			Result:      prediction.ResultPending,
			Explanation: "waiting for full time",
		}
	}

	var won bool
	switch kind {
	case prediction.LegacyBothTeamsScore, "btts":
		won = score.Home > 0 && score.Away > 0
	case prediction.LegacyHomeWin:
		won = score.Home > score.Away
	case prediction.LegacyAwayWin:
		won = score.Away > score.Home
	case prediction.LegacyDraw:
		won = score.Home == score.Away
	default:
		return SettlementDecision{
			Result:      prediction.ResultPending,
			Explanation: fmt.Sprintf("unsupported prediction type %q", kind),
		}
	}

	if won {
		return SettlementDecision{Result: prediction.ResultWon, Explanation: fmt.Sprintf("full time %s", score)}
	}
	return SettlementDecision{Result: prediction.ResultLost, Explanation: fmt.Sprintf("full time %s", score)}
}
