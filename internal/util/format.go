package util //nolint:revive // package name util hosts shared formatting helpers used in log lines

import (
	"strconv"
	"time"
)

// FormatThousands renders n with comma thousands separators, e.g. 12345 as "12,345".
func FormatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := n < 0
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	out := make([]byte, 0, len(s)+len(s)/3+1)
	if neg {
		out = append(out, '-')
	}
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	out = append(out, s[:lead]...)
	for i := lead; i < len(s); i += 3 {
		out = append(out, ',')
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}

// FormatElapsed describes a job duration the way completion logs show it:
// milliseconds below threshold, whole seconds from there on.
func FormatElapsed(d, threshold time.Duration) string {
	if d < threshold {
		return FormatThousands(d.Round(time.Millisecond).Milliseconds()) + " milliseconds"
	}
	return FormatThousands(int64(d.Round(time.Second)/time.Second)) + " seconds"
}
