package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateRenewalDate(t *testing.T) {
	today := time.Date(2024, time.March, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		raw     string
		want    time.Time
		wantMsg string
	}{
		{name: "today", raw: "2024-03-10", want: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
		{name: "upper bound", raw: "2024-04-07", want: time.Date(2024, 4, 7, 0, 0, 0, 0, time.UTC)},
		{name: "us format", raw: "03/20/2024", want: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)},
		{name: "short year", raw: "03/20/24", want: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)},
		{name: "yesterday", raw: "2024-03-09", wantMsg: MsgRenewalInPast},
		{name: "past the window", raw: "2024-04-08", wantMsg: MsgRenewalTooFar},
		{name: "empty", raw: "  ", wantMsg: MsgRenewalRequired},
		{name: "garbage", raw: "next tuesday", wantMsg: MsgRenewalInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := ValidateRenewalDate(tt.raw, today)
			assert.Equal(t, tt.wantMsg, msg)
			if tt.wantMsg == "" {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestDefaultRenewalDate(t *testing.T) {
	today := time.Date(2024, time.December, 20, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), DefaultRenewalDate(today))
}
