package analyze

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	inDaysRe   = regexp.MustCompile(`^in (\d+) days?$`)
	inWeeksRe  = regexp.MustCompile(`^in (\d+) weeks?$`)
	dueFillers = regexp.MustCompile(`^(by|on|due|until|before) `)
)

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// ResolveDueDate turns the model's natural-language due date into an
// ISO date relative to the recording date. Unresolvable phrases come
// back empty; a missing due date is better than a wrong one.
func ResolveDueDate(raw, recordingDate string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}
	if isoDateRe.MatchString(raw) {
		return raw
	}

	base, err := time.Parse("2006-01-02", recordingDate)
	if err != nil {
		base = time.Now().UTC()
	}

	raw = dueFillers.ReplaceAllString(raw, "")

	switch raw {
	case "today", "tonight", "this evening", "end of day", "eod":
		return iso(base)
	case "tomorrow":
		return iso(base.AddDate(0, 0, 1))
	case "day after tomorrow":
		return iso(base.AddDate(0, 0, 2))
	case "next week", "in a week":
		return iso(base.AddDate(0, 0, 7))
	case "end of week", "this week":
		return iso(nextWeekday(base, time.Friday, false))
	case "next month", "in a month":
		return iso(base.AddDate(0, 1, 0))
	}

	if m := inDaysRe.FindStringSubmatch(raw); m != nil {
		n, _ := strconv.Atoi(m[1])
		return iso(base.AddDate(0, 0, n))
	}
	if m := inWeeksRe.FindStringSubmatch(raw); m != nil {
		n, _ := strconv.Atoi(m[1])
		return iso(base.AddDate(0, 0, 7*n))
	}

	if day, ok := weekdays[strings.TrimPrefix(raw, "next ")]; ok {
		skipWeek := strings.HasPrefix(raw, "next ")
		return iso(nextWeekday(base, day, skipWeek))
	}

	return ""
}

// nextWeekday finds the upcoming occurrence of day strictly after base.
// With skipWeek it lands in the following week instead.
func nextWeekday(base time.Time, day time.Weekday, skipWeek bool) time.Time {
	delta := (int(day) - int(base.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	if skipWeek && delta < 7 {
		delta += 7
	}
	return base.AddDate(0, 0, delta)
}

func iso(t time.Time) string {
	return t.Format("2006-01-02")
}
