package insights

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"searchlight-backend/lib/timezone"
)

// DateRange is the analysis window extracted from a question.
type DateRange struct {
	Start time.Time
	End   time.Time
	Days  int
	Label string
}

var (
	yearMonthRegex = regexp.MustCompile(`(\d{4})年(\d{1,2})月`)
	pastDaysRegex  = regexp.MustCompile(`過去(\d+)日`)
)

// ParseDateRange maps the japanese date phrases that show up in
// analytics questions onto a concrete window. phrases it knows:
//
//	今日/本日      today
//	昨日          yesterday
//	今週          trailing 7 days
//	先週          the previous calendar week (monday through sunday)
//	今月          trailing 30 days
//	先月          the previous calendar month
//	過去N日       trailing N days
//	最近          trailing 7 days
//	YYYY年MM月    that whole calendar month
//
// anything else falls back to the trailing 30 days.
func ParseDateRange(question string, now time.Time) DateRange {
	now = timezone.Day(now)

	if m := yearMonthRegex.FindStringSubmatch(question); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, timezone.Location)
			end := start.AddDate(0, 1, -1)
			return DateRange{
				Start: start,
				End:   end,
				Days:  end.Day(),
				Label: m[0],
			}
		}
	}

	if m := pastDaysRegex.FindStringSubmatch(question); m != nil {
		days, _ := strconv.Atoi(m[1])
		if days > 0 {
			return trailing(now, days, m[0])
		}
	}

	switch {
	case strings.Contains(question, "今日") || strings.Contains(question, "本日"):
		return DateRange{Start: now, End: now, Days: 1, Label: "今日"}

	case strings.Contains(question, "昨日"):
		y := now.AddDate(0, 0, -1)
		return DateRange{Start: y, End: y, Days: 1, Label: "昨日"}

	case strings.Contains(question, "先週"):
		// monday of the previous week
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		thisMonday := now.AddDate(0, 0, -(weekday - 1))
		start := thisMonday.AddDate(0, 0, -7)
		return DateRange{
			Start: start,
			End:   start.AddDate(0, 0, 6),
			Days:  7,
			Label: "先週",
		}

	case strings.Contains(question, "今週"):
		return trailing(now, 7, "今週")

	case strings.Contains(question, "先月"):
		firstOfThisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, timezone.Location)
		start := firstOfThisMonth.AddDate(0, -1, 0)
		end := firstOfThisMonth.AddDate(0, 0, -1)
		return DateRange{Start: start, End: end, Days: end.Day(), Label: "先月"}

	case strings.Contains(question, "今月"):
		return trailing(now, 30, "今月")

	case strings.Contains(question, "最近"):
		return trailing(now, 7, "最近")
	}

	return trailing(now, 30, "")
}

func trailing(now time.Time, days int, label string) DateRange {
	return DateRange{
		Start: now.AddDate(0, 0, -(days - 1)),
		End:   now,
		Days:  days,
		Label: label,
	}
}
