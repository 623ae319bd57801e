package sentiment

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"MarketPulse/internal/domain/errs"
	"MarketPulse/pkg/util"
)

var (
	scoreLine   = regexp.MustCompile(`(?im)^\W*score\W*[:=]\s*"?(-?\d+(?:\.\d+)?)`)
	summaryLine = regexp.MustCompile(`(?im)^\W*summary\W*[:=]\s*"?(.+?)"?\s*$`)
)

type sentimentPayload struct {
	Score   any    `json:"score"`
	Summary string `json:"summary"`
}

// ParseSentiment extracts {score, summary} from free model output. It accepts a
// bare JSON object, one wrapped in prose or a code fence, or "score:" /
// "summary:" lines. The score is clamped to [-1, 1].
func ParseSentiment(text string) (float64, string, error) {
	if score, summary, ok := firstObject(text); ok {
		return util.ClampFloat(score, -1, 1), summary, nil
	}

	sm := scoreLine.FindStringSubmatch(text)
	um := summaryLine.FindStringSubmatch(text)
	if sm != nil && um != nil {
		score, err := strconv.ParseFloat(sm[1], 64)
		if err == nil && !math.IsNaN(score) {
			return util.ClampFloat(score, -1, 1), strings.TrimSpace(um[1]), nil
		}
	}

	return 0, "", &errs.ParseError{Field: "sentiment", Value: abbreviate(text, 120), Err: fmt.Errorf("no score/summary found")}
}

// firstObject decodes one JSON object at each '{' in turn and returns the
// first that carries a usable score and summary. Trailing text is ignored.
func firstObject(text string) (float64, string, bool) {
	for i := strings.IndexByte(text, '{'); i >= 0; {
		var p sentimentPayload
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&p); err == nil {
			summary := strings.TrimSpace(p.Summary)
			if score, ok := toScore(p.Score); ok && summary != "" {
				return score, summary, true
			}
		}
		next := strings.IndexByte(text[i+1:], '{')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return 0, "", false
}

func toScore(v any) (float64, bool) {
	switch s := v.(type) {
	case float64:
		return s, !math.IsNaN(s) && !math.IsInf(s, 0)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func abbreviate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
