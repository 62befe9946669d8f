package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verdictLine struct {
	Username string  `json:"username"`
	Score    float64 `json:"score"`
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `[{"a":1}]`, `[{"a":1}]`},
		{"json fence", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"bare fence", "```\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"surrounding whitespace", "  ```json\n[1,2]\n```  ", `[1,2]`},
		{"uppercase tag", "```JSON\n{}\n```", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFences(tt.in))
		})
	}
}

func TestDecodeBatch(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		items, err := DecodeBatch[verdictLine](`[{"username":"a","score":0.8},{"username":"b","score":0.2}]`)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "a", items[0].Username)
		assert.Equal(t, 0.2, items[1].Score)
	})

	t.Run("single object promoted to array", func(t *testing.T) {
		items, err := DecodeBatch[verdictLine](`{"username":"solo","score":0.9}`)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "solo", items[0].Username)
	})

	t.Run("fenced array", func(t *testing.T) {
		items, err := DecodeBatch[verdictLine]("```json\n[{\"username\":\"a\",\"score\":0.5}]\n```")
		require.NoError(t, err)
		require.Len(t, items, 1)
	})

	t.Run("prose is an error", func(t *testing.T) {
		_, err := DecodeBatch[verdictLine]("I cannot evaluate these accounts.")
		assert.Error(t, err)
	})

	t.Run("empty is an error", func(t *testing.T) {
		_, err := DecodeBatch[verdictLine]("```json\n```")
		assert.Error(t, err)
	})
}
