package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBudget(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"1000000", 1000000, true},
		{"1,000,000", 1000000, true},
		{"£1,500,000", 1500000, true},
		{"750k", 750000, true},
		{"1.2m", 1200000, true},
		{"2 million", 2000000, true},
		{"1.5 mil", 1500000, true},
		{"$999999", 999999, true},
		{"a lot", 0, false},
		{"-5", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		got, ok := ParseBudget(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.in)
		}
	}
}
