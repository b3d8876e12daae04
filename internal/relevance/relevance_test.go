package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRelevant(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		want        bool
	}{
		{"model release", "New GPT-5 model released", "", true},
		{"bakery", "Local bakery opens", "", false},
		{"keyword in description", "Weekly roundup", "Advances in Machine Learning this week", true},
		{"multi word keyword", "Startups bet on stable diffusion", "", true},
		{"upper case", "ROBOTICS firms expand", "", true},
		{"empty", "", "", false},
		{"sports", "City wins the derby", "Fans celebrate downtown", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRelevant(tt.title, tt.description))
		})
	}
}

func TestIsRelevantSubstringMatch(t *testing.T) {
	// "ai" is matched as a substring, as in "said".
	assert.True(t, IsRelevant("Mayor said nothing", ""))
}
