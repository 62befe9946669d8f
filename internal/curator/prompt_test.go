package curator

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/festivaldir/curator/internal/models"
)

func TestTruncateCutsOnRuneBoundary(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short string untouched", "handmade kandi", 50, "handmade kandi"},
		{"ascii cut at limit", "handmade kandi", 8, "handmade"},
		{"emoji not split mid-sequence", "art \U0001F344\U0001F344", 6, "art "},
		{"cut lands exactly on rune start", "aéb", 3, "aé"},
		{"all multibyte under tiny limit", "\U0001F344\U0001F344", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, len(got), tt.limit)
		})
	}
}

func TestAccountLineStaysValidUTF8WithEmojiBio(t *testing.T) {
	rec := &models.ProfileRecord{
		Username:  "shroomworks",
		Biography: "trippy shroom art" + strings.Repeat("\U0001F344", 100),
		Followers: 4200,
	}
	rec.RecomputeCombinedText()
	sr := &models.ScoredRecord{Record: rec}

	for _, mode := range []models.Mode{models.ModeV1, models.ModeV2} {
		line := formatAccountLine(sr, mode)
		assert.True(t, utf8.ValidString(line), "mode %s", mode)
		assert.Contains(t, line, "@shroomworks")
	}
}
