package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/riskibarqy/prediction-settlement/internal/domain/alert"
	"github.com/riskibarqy/prediction-settlement/internal/domain/prediction"
)

const firstHalfLastMinute = 45

var (
	alertBotMarkerPattern = regexp.MustCompile(`^\s*(\d+)`)
	alertTeamsPattern     = regexp.MustCompile(`\*\s*(.+?)\s+-\s+(.+?)\s*\(`)
	alertScorePattern     = regexp.MustCompile(`\((\d+)\s*-\s*(\d+)\)`)
	alertMinutePattern    = regexp.MustCompile(`(?i)(?:minute\s*:|⏰|⏱️?|⌚|[🕐🕑🕒🕓🕔🕕🕖🕗🕘🕙🕚🕛])\s*(\d+)`)
	alertLastGoalPattern  = regexp.MustCompile(`(?i)songol\s*dk\s*:\s*([^\s\n]+)`)
	alertDigitsPattern    = regexp.MustCompile(`^(\d+)`)
)

// ParseAlert extracts a prediction from bot alert text. It never returns a
// partial result: missing teams, minute or score fail with ErrParseFailure.
func ParseAlert(text string) (alert.ParsedPrediction, error) {
	if strings.TrimSpace(text) == "" {
		return alert.ParsedPrediction{}, fmt.Errorf("%w: empty alert text", ErrParseFailure)
	}

	teams := alertTeamsPattern.FindStringSubmatch(text)
	if teams == nil {
		return alert.ParsedPrediction{}, fmt.Errorf("%w: teams not found", ErrParseFailure)
	}
	home := strings.TrimSpace(teams[1])
	away := strings.TrimSpace(teams[2])
	if home == "" || away == "" {
		return alert.ParsedPrediction{}, fmt.Errorf("%w: empty team name", ErrParseFailure)
	}

	scoreLoc := alertScorePattern.FindStringSubmatchIndex(text)
	if scoreLoc == nil {
		return alert.ParsedPrediction{}, fmt.Errorf("%w: score not found", ErrParseFailure)
	}
	homeGoals, _ := strconv.Atoi(text[scoreLoc[2]:scoreLoc[3]])
	awayGoals, _ := strconv.Atoi(text[scoreLoc[4]:scoreLoc[5]])

	minuteLoc := alertMinutePattern.FindStringSubmatchIndex(text)
	if minuteLoc == nil {
		return alert.ParsedPrediction{}, fmt.Errorf("%w: minute not found", ErrParseFailure)
	}
	minute, err := strconv.Atoi(text[minuteLoc[2]:minuteLoc[3]])
	if err != nil {
		return alert.ParsedPrediction{}, fmt.Errorf("%w: invalid minute", ErrParseFailure)
	}

	parsed := alert.ParsedPrediction{
		HomeTeamRaw:    home,
		AwayTeamRaw:    away,
		LeagueRaw:      extractLeague(text, scoreLoc[1], minuteLoc[0]),
		Minute:         minute,
		Score:          alert.Score{Home: homeGoals, Away: awayGoals},
		LastGoalMinute: extractLastGoalMinute(text),
	}
	if m := alertBotMarkerPattern.FindStringSubmatch(text); m != nil {
		parsed.BotMarker = m[1]
	}
	parsed.PredictionType = derivePredictionType(parsed.Minute, parsed.Score)

	return parsed, nil
}

func derivePredictionType(minute int, score alert.Score) prediction.Type {
	period := prediction.PeriodSecondHalf
	if minute <= firstHalfLastMinute {
		period = prediction.PeriodFirstHalf
	}
	threshold := decimal.NewFromInt(int64(score.Total())).Add(decimal.RequireFromString("0.5"))
	return prediction.NewGoalLine(period, threshold, prediction.DirectionOver)
}

// extractLeague prefers the second line of a multi-line alert. Single-line
// alerts carry the league between the score and the minute marker.
func extractLeague(text string, scoreEnd, minuteStart int) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	nonEmpty := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			nonEmpty = append(nonEmpty, line)
		}
	}

	if len(nonEmpty) > 1 {
		candidate := nonEmpty[1]
		if !alertTeamsPattern.MatchString(candidate) && !alertMinutePattern.MatchString(candidate) {
			return trimLeadingDecoration(candidate)
		}
		return ""
	}

	if scoreEnd < 0 || minuteStart <= scoreEnd || minuteStart > len(text) {
		return ""
	}
	return trimLeadingDecoration(text[scoreEnd:minuteStart])
}

func trimLeadingDecoration(value string) string {
	trimmed := strings.TrimLeftFunc(value, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.TrimSpace(strings.TrimRightFunc(trimmed, func(r rune) bool {
		return unicode.IsSpace(r) || r == '|' || r == '-' || r == ','
	}))
}

func extractLastGoalMinute(text string) *int {
	m := alertLastGoalPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	value := strings.TrimSpace(m[1])
	switch value {
	case "", "-", "–", "—":
		return nil
	}
	digits := alertDigitsPattern.FindString(value)
	if digits == "" {
		return nil
	}
	minute, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	return &minute
}
