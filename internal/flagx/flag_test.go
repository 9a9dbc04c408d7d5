package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "keeps allowed flag with value",
			args:    []string{"-d", "cache.db", "-x", "other"},
			allowed: []string{"-d"},
			want:    []string{"-d", "cache.db"},
		},
		{
			name:    "equals form",
			args:    []string{"-d=cache.db", "-x=other"},
			allowed: []string{"-d"},
			want:    []string{"-d=cache.db"},
		},
		{
			name:    "flag followed by another flag keeps no value",
			args:    []string{"-v", "-d", "cache.db"},
			allowed: []string{"-v", "-d"},
			want:    []string{"-v", "-d", "cache.db"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-d", "cache.db"},
			allowed: nil,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}
