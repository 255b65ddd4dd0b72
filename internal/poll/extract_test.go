package poll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLoadAverage(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
		wantOk bool
	}{
		{
			name:   "linux uptime output",
			output: " 14:23:01 up 12 days,  3:42,  2 users,  load average: 0.12, 0.34, 0.56\n",
			want:   "0.12, 0.34, 0.56",
			wantOk: true,
		},
		{
			name:   "macos plural label",
			output: "14:23  up 12 days, 3:42, 2 users, load averages: 1.62 1.45 1.39\n",
			want:   "1.62 1.45 1.39",
			wantOk: true,
		},
		{
			name:   "no trailing newline",
			output: "load average: 1.00, 1.01, 1.02",
			want:   "1.00, 1.01, 1.02",
			wantOk: true,
		},
		{
			name:   "label on later line",
			output: "some banner\n 09:00:00 up 1 min,  load average: 0.00, 0.01, 0.00\n",
			want:   "0.00, 0.01, 0.00",
			wantOk: true,
		},
		{
			name:   "value only up to end of line",
			output: "load average: 0.10, 0.20, 0.30\ntrailing garbage\n",
			want:   "0.10, 0.20, 0.30",
			wantOk: true,
		},
		{
			name:   "label absent",
			output: "uptime: command not found\n",
			wantOk: false,
		},
		{
			name:   "label without colon is not a match",
			output: "the load average here is unknown\n",
			wantOk: false,
		},
		{
			name:   "empty input",
			output: "",
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractLoadAverage(tt.output)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
