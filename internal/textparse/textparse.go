// Package textparse extracts scheduling signals from free-form, bilingual
// (English / Chinese) text. Every function is pure and total: when no signal
// is present the zero value and false are returned.
package textparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/julianstephens/morrow/internal/models"
)

var (
	// Alternatives, in order: "3pm" / "3:30 pm", "07:30", "7点" / "7点半" / "7点15分".
	clockPattern = regexp.MustCompile(
		`(?i)(\d{1,2})(?:[:：](\d{2}))?\s*([ap])\.?m\b\.?` +
			`|(\d{1,2})[:：](\d{2})` +
			`|(\d{1,2})点(?:(半)|(\d{1,2})分?)?`)

	hourPattern   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:个\s*)?(?:hours?|hrs?|h(?:\b|\d)|小时|钟头)`)
	minutePattern = regexp.MustCompile(`(?i)(?:^|[^\d点:：.])(\d+)\s*(?:minutes?|mins?|min\b|m\b|分钟)`)

	// Chinese day-part prefixes that move a 12-hour clock reading into the afternoon.
	afternoonPrefixes = []string{"下午", "中午"}
	// Evening prefixes also reach past midnight: 晚上12点 is 00:00 and 晚上1点 is 01:00.
	eveningPrefixes = []string{"晚上", "傍晚"}

	halfHourPhrases = []string{"half an hour", "half hour", "半小时", "半个小时", "半个钟头"}

	morningKeywords   = []string{"早上", "上午", "早晨", "morning"}
	afternoonKeywords = []string{"下午", "午后", "afternoon"}
	eveningKeywords   = []string{"晚上", "傍晚", "晚间", "evening", "tonight"}

	highPriorityKeywords = []string{"urgent", "important", "asap", "紧急", "重要", "必须", "优先"}
	lowPriorityKeywords  = []string{"optional", "if time permits", "可选", "如果有时间", "有空再"}
)

// ExtractTime finds the first valid clock time in text. It recognizes
// "HH:MM", "H点", "H点M分", "H点半" and "Ham"/"H:MMpm".
func ExtractTime(text string) (models.TimeOfDay, bool) {
	for _, m := range clockPattern.FindAllStringSubmatchIndex(text, -1) {
		group := func(i int) string {
			if m[2*i] < 0 {
				return ""
			}
			return text[m[2*i]:m[2*i+1]]
		}

		var hour, minute int
		switch {
		case group(1) != "":
			hour = atoi(group(1))
			minute = atoi(group(2))
			if hour < 1 || hour > 12 {
				continue
			}
			pm := strings.EqualFold(group(3), "p")
			if hour == 12 {
				hour = 0
			}
			if pm {
				hour += 12
			}
		case group(4) != "":
			hour = atoi(group(4))
			minute = atoi(group(5))
		default:
			hour = atoi(group(6))
			if group(7) != "" {
				minute = 30
			} else {
				minute = atoi(group(8))
			}
			hour = applyDayPart(text[:m[0]], hour)
		}

		if hour < 24 && minute < 60 {
			return models.NewTimeOfDay(hour, minute), true
		}
	}
	return 0, false
}

// ExtractDuration returns a duration in minutes from phrases such as
// "2 hours", "1.5h", "30 min", "1小时", "1个小时 20分钟" or "半小时".
// Hour and minute parts found together are summed.
func ExtractDuration(text string) (int, bool) {
	total := 0
	found := false

	if m := hourPattern.FindStringSubmatch(text); m != nil {
		if h, err := strconv.ParseFloat(m[1], 64); err == nil && h > 0 {
			total += int(math.Round(h * 60))
			found = true
		}
	}
	if m := minutePattern.FindStringSubmatch(text); m != nil {
		if mins := atoi(m[1]); mins > 0 {
			total += mins
			found = true
		}
	}
	if found {
		return total, true
	}

	lower := strings.ToLower(text)
	for _, phrase := range halfHourPhrases {
		if strings.Contains(lower, phrase) {
			return 30, true
		}
	}
	return 0, false
}

// DetectPeriod returns the first day part mentioned, checking morning,
// afternoon and evening keywords in that order.
func DetectPeriod(text string) models.TimePeriod {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, morningKeywords):
		return models.PeriodMorning
	case containsAny(lower, afternoonKeywords):
		return models.PeriodAfternoon
	case containsAny(lower, eveningKeywords):
		return models.PeriodEvening
	default:
		return models.PeriodNone
	}
}

// DetectPriority maps urgency keywords to High and optional-class keywords
// to Low. High wins when both appear.
func DetectPriority(text string) models.Priority {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, highPriorityKeywords):
		return models.PriorityHigh
	case containsAny(lower, lowPriorityKeywords):
		return models.PriorityLow
	default:
		return models.PriorityNormal
	}
}

// applyDayPart converts a 点 hour to 24-hour time using the day part
// written right before it.
func applyDayPart(before string, hour int) int {
	before = strings.TrimRight(before, " \t")
	switch {
	case hasSuffixAny(before, afternoonPrefixes):
		if hour < 12 {
			return hour + 12
		}
	case hasSuffixAny(before, eveningPrefixes):
		switch {
		case hour >= 5 && hour <= 11:
			return hour + 12
		case hour == 12:
			return 0
		}
	}
	return hour
}

func hasSuffixAny(s string, suffixes []string) bool {
	for _, p := range suffixes {
		if strings.HasSuffix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
