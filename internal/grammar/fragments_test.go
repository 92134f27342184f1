package grammar

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func word(text string, x0, y0, x1, y1, line int) Word {
	return Word{Text: text, Confidence: 90, Box: image.Rect(x0, y0, x1, y1), Line: line}
}

func TestGroupWords(t *testing.T) {
	t.Parallel()

	words := []Word{
		// second line listed first to check vertical ordering
		word("1.45", 400, 40, 440, 60, 2),
		word("Skimmed", 70, 40, 140, 60, 2),
		word("Semi", 10, 40, 60, 60, 2),
		word("TESCO", 10, 0, 90, 20, 1),
		word(" ", 100, 0, 105, 20, 1),
	}

	frags := GroupWords(words, 0)
	require.Len(t, frags, 3)
	assert.Equal(t, "TESCO", frags[0].Text)
	assert.Equal(t, "Semi Skimmed", frags[1].Text)
	assert.Equal(t, "1.45", frags[2].Text)
	assert.InDelta(t, 90, frags[1].Confidence, 1e-9)
	require.Len(t, frags[1].Polygon, 4)
	assert.Equal(t, 10.0, frags[1].Polygon[0].X)
	assert.Equal(t, 140.0, frags[1].Polygon[2].X)
}

func TestGroupWordsGapFactor(t *testing.T) {
	t.Parallel()

	words := []Word{
		word("Milk", 0, 0, 40, 20, 1),
		word("1.10", 100, 0, 140, 20, 1),
	}

	assert.Len(t, GroupWords(words, 1.5), 2)
	assert.Len(t, GroupWords(words, 5), 1)
	assert.Empty(t, GroupWords(nil, 1.5))
}

func TestGroupWordsWithoutLineNumbers(t *testing.T) {
	t.Parallel()

	// line numbers left at zero, as plain word boxes arrive
	words := []Word{
		word("Milk", 10, 0, 50, 20, 0),
		word("Bread", 10, 30, 60, 50, 0),
		word("1.45", 300, 1, 340, 21, 0),
		word("0.95", 300, 29, 340, 49, 0),
	}

	frags := GroupWords(words, 0)
	require.Len(t, frags, 4)
	texts := make([]string, len(frags))
	for i, f := range frags {
		texts[i] = f.Text
	}
	assert.Equal(t, []string{"Milk", "1.45", "Bread", "0.95"}, texts)
}
