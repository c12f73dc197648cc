package collector

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParsePeriod converts a lookback such as "240d", "6mo", "2y", "ytd" or "max"
// into calendar days relative to now.
func ParsePeriod(period string, now time.Time) (int, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	switch p {
	case "":
		return 0, fmt.Errorf("empty period")
	case "ytd":
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return int(now.Sub(start).Hours()/24) + 1, nil
	case "max":
		return 100 * 365, nil
	}

	units := []struct {
		suffix string
		days   int
	}{
		{"mo", 30},
		{"wk", 7},
		{"d", 1},
		{"y", 365},
	}
	for _, u := range units {
		if !strings.HasSuffix(p, u.suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(p, u.suffix))
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid period %q", period)
		}
		return n * u.days, nil
	}
	return 0, fmt.Errorf("invalid period %q", period)
}

// chartRange picks the smallest Yahoo chart range covering days.
func chartRange(days int) string {
	switch {
	case days <= 5:
		return "5d"
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	case days <= 730:
		return "2y"
	case days <= 1825:
		return "5y"
	case days <= 3650:
		return "10y"
	default:
		return "max"
	}
}
