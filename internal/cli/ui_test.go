package cli

import (
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/starsky/pkg/errors"
	"github.com/matzehuels/starsky/pkg/placement"
)

func contains(s, sub string) bool { return strings.Contains(s, sub) }

func TestTierTable(t *testing.T) {
	reports := []placement.TierReport{
		{Name: "micro", Target: 10, Placed: 10, Attempts: 42, FinalSpacing: 20},
		{Name: "super", Target: 4, Placed: 3, Forced: 0, Attempts: 5000, FinalSpacing: 27, Short: true},
	}
	out := tierTable(reports)
	for _, want := range []string{"TIER", "micro", "10/10", "super", "3/4", "short 1", "27.0"} {
		if !contains(out, want) {
			t.Errorf("tier table missing %q:\n%s", want, out)
		}
	}
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
		not  string
	}{
		{
			name: "validation shows message only",
			err:  errors.New(errors.ErrCodeInvalidFormat, "invalid format %q", "gif"),
			want: `invalid format "gif"`,
			not:  "INVALID_FORMAT",
		},
		{
			name: "other errors keep their text",
			err:  fmt.Errorf("write sky.html: disk full"),
			want: "disk full",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatError(tt.err)
			if !contains(got, tt.want) {
				t.Errorf("FormatError() = %q, want it to contain %q", got, tt.want)
			}
			if tt.not != "" && contains(got, tt.not) {
				t.Errorf("FormatError() = %q, should not contain %q", got, tt.not)
			}
		})
	}
}
