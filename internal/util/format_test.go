package util

import (
	"testing"
	"time"
)

func TestFormatThousands(t *testing.T) {
	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		12345:    "12,345",
		1234567:  "1,234,567",
		-1234567: "-1,234,567",
		-12:      "-12",
	}
	for in, want := range tests {
		if got := FormatThousands(in); got != want {
			t.Fatalf("FormatThousands(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{1500 * time.Millisecond, "1,500 milliseconds"},
		{1999*time.Millisecond + 400*time.Microsecond, "1,999 milliseconds"},
		{2 * time.Second, "2 seconds"},
		{95*time.Second + 600*time.Millisecond, "96 seconds"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.d, 2*time.Second); got != tt.want {
			t.Fatalf("FormatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
