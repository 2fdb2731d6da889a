package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestOverlap(t *testing.T) {
	cases := []struct {
		name string
		a    Interval
		b    Interval
		want bool
	}{
		{
			name: "disjoint ranges",
			a:    New(date(2024, 3, 1), nil),
			b:    New(date(2024, 2, 1), datePtr(2024, 2, 15)),
			want: false,
		},
		{
			name: "closed range crossing into open range",
			a:    New(date(2024, 3, 1), nil),
			b:    New(date(2024, 2, 15), datePtr(2024, 3, 10)),
			want: true,
		},
		{
			name: "both open ended",
			a:    New(date(2020, 1, 1), nil),
			b:    New(date(2030, 1, 1), nil),
			want: true,
		},
		{
			name: "open ended starting after the closed one ends",
			a:    New(date(2024, 6, 1), nil),
			b:    New(date(2024, 1, 1), datePtr(2024, 5, 31)),
			want: false,
		},
		{
			name: "identical single day",
			a:    New(date(2024, 4, 10), datePtr(2024, 4, 10)),
			b:    New(date(2024, 4, 10), datePtr(2024, 4, 10)),
			want: true,
		},
		{
			name: "touching boundary counts as overlap",
			a:    New(date(2024, 1, 1), datePtr(2024, 3, 1)),
			b:    New(date(2024, 3, 1), datePtr(2024, 6, 1)),
			want: true,
		},
		{
			name: "adjacent but not touching",
			a:    New(date(2024, 1, 1), datePtr(2024, 2, 29)),
			b:    New(date(2024, 3, 1), datePtr(2024, 6, 1)),
			want: false,
		},
		{
			name: "contained interval",
			a:    New(date(2024, 1, 1), datePtr(2024, 12, 31)),
			b:    New(date(2024, 5, 1), datePtr(2024, 5, 31)),
			want: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlap(tc.a, tc.b))
			assert.Equal(t, tc.want, Overlap(tc.b, tc.a), "overlap must be symmetric")
		})
	}
}

func TestOverlapNormalizesDateTimeGranularity(t *testing.T) {
	// A datetime late in the day still overlaps a date-only interval that
	// ends the same day.
	lateEnd := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	a := New(time.Date(2024, 2, 1, 8, 15, 0, 0, time.UTC), &lateEnd)
	b := New(date(2024, 3, 1), datePtr(2024, 4, 1))
	assert.True(t, Overlap(a, b))
}

func TestNormalizeDate(t *testing.T) {
	in := time.Date(2024, 7, 9, 18, 45, 12, 99, time.FixedZone("ART", -3*3600))
	got := NormalizeDate(in)
	assert.Equal(t, time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC), got)
}

func TestIntervalOverlapsMethod(t *testing.T) {
	a := New(date(2024, 1, 1), nil)
	b := New(date(2024, 6, 1), datePtr(2024, 7, 1))
	assert.True(t, a.Overlaps(b))
}
