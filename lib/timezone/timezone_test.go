package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDay(t *testing.T) {
	cases := []struct {
		in     time.Time
		expect time.Time
	}{
		{
			in:     time.Date(2025, time.October, 14, 23, 59, 59, 0, Location),
			expect: time.Date(2025, time.October, 14, 0, 0, 0, 0, Location),
		},
		{
			in:     time.Date(2025, time.October, 14, 0, 0, 0, 0, Location),
			expect: time.Date(2025, time.October, 14, 0, 0, 0, 0, Location),
		},
		{
			// 9am UTC is 6pm JST, still the same calendar day
			in:     time.Date(2025, time.October, 14, 9, 0, 0, 0, time.UTC),
			expect: time.Date(2025, time.October, 14, 0, 0, 0, 0, Location),
		},
		{
			// 11pm UTC is 8am JST the next day
			in:     time.Date(2025, time.October, 14, 23, 0, 0, 0, time.UTC),
			expect: time.Date(2025, time.October, 15, 0, 0, 0, 0, Location),
		},
	}

	for _, test := range cases {
		require.Equal(t, test.expect, Day(test.in))
	}
}
