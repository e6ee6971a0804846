package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0 ms"},
		{250 * time.Millisecond, "250 ms"},
		{1500 * time.Millisecond, "1.5 Sec"},
		{90 * time.Second, "1.5 Min"},
		{3 * time.Hour, "3.0 Hrs"},
		{36 * time.Hour, "1.5 Days"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.in))
		})
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "0 B", FormatBytes(0))
	assert.Equal(t, "1.5 KiB", FormatBytes(1536))
	assert.Equal(t, "-1.0 KiB", FormatBytes(-1024))
}
