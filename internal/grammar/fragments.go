package grammar

import (
	"image"
	"sort"
	"strings"

	"github.com/foxxcyber/receipt-grammar/internal/models"
)

// DefaultGapFactor splits a text line where the horizontal gap between two
// words exceeds this many line heights.
const DefaultGapFactor = 1.5

// Word is one word box reported by the OCR engine
type Word struct {
	Text       string
	Confidence float64
	Box        image.Rectangle
	Block      int
	Paragraph  int
	Line       int
}

type lineKey struct{ block, par, line int }

// GroupWords merges word boxes into reading-ordered fragments. Words on the
// same text line join with a space unless a wide gap separates them, which
// keeps a receipt's name and price columns as separate fragments.
func GroupWords(words []Word, gapFactor float64) []models.Fragment {
	if gapFactor <= 0 {
		gapFactor = DefaultGapFactor
	}

	var kept []Word
	for _, w := range words {
		if strings.TrimSpace(w.Text) != "" {
			kept = append(kept, w)
		}
	}
	if !hasLayout(kept) {
		kept = clusterLines(kept)
	}

	lines := make(map[lineKey][]Word)
	var keys []lineKey
	for _, w := range kept {
		k := lineKey{w.Block, w.Paragraph, w.Line}
		if _, ok := lines[k]; !ok {
			keys = append(keys, k)
		}
		lines[k] = append(lines[k], w)
	}

	for _, k := range keys {
		ws := lines[k]
		sort.SliceStable(ws, func(i, j int) bool { return ws[i].Box.Min.X < ws[j].Box.Min.X })
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := lines[keys[i]][0].Box, lines[keys[j]][0].Box
		if a.Min.Y != b.Min.Y {
			return a.Min.Y < b.Min.Y
		}
		return a.Min.X < b.Min.X
	})

	frags := []models.Fragment{}
	for _, k := range keys {
		frags = append(frags, splitLine(lines[k], gapFactor)...)
	}
	return frags
}

// hasLayout reports whether the engine numbered the words' text lines
func hasLayout(ws []Word) bool {
	for _, w := range ws {
		if w.Block != 0 || w.Paragraph != 0 || w.Line != 0 {
			return true
		}
	}
	return false
}

// clusterLines numbers lines from geometry alone. Words are taken top to
// bottom and a word joins the current line when its vertical centre falls
// inside the line's span.
func clusterLines(ws []Word) []Word {
	out := make([]Word, len(ws))
	copy(out, ws)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Box.Min.Y+out[i].Box.Max.Y < out[j].Box.Min.Y+out[j].Box.Max.Y
	})

	line := 0
	top, bottom := 0, -1
	for i := range out {
		b := out[i].Box
		mid := (b.Min.Y + b.Max.Y) / 2
		if line == 0 || mid < top || mid > bottom {
			line++
			top, bottom = b.Min.Y, b.Max.Y
		} else {
			top, bottom = min(top, b.Min.Y), max(bottom, b.Max.Y)
		}
		out[i].Line = line
	}
	return out
}

func splitLine(ws []Word, gapFactor float64) []models.Fragment {
	height := 0
	for _, w := range ws {
		if h := w.Box.Dy(); h > height {
			height = h
		}
	}
	maxGap := gapFactor * float64(height)

	var out []models.Fragment
	start := 0
	for i := 1; i <= len(ws); i++ {
		if i < len(ws) && float64(ws[i].Box.Min.X-ws[i-1].Box.Max.X) <= maxGap {
			continue
		}
		out = append(out, mergeWords(ws[start:i]))
		start = i
	}
	return out
}

func mergeWords(ws []Word) models.Fragment {
	texts := make([]string, len(ws))
	box := ws[0].Box
	conf := 0.0
	for i, w := range ws {
		texts[i] = strings.TrimSpace(w.Text)
		box = box.Union(w.Box)
		conf += w.Confidence
	}
	return models.Fragment{
		Text:       strings.Join(texts, " "),
		Confidence: conf / float64(len(ws)),
		Polygon: []models.Point{
			{X: float64(box.Min.X), Y: float64(box.Min.Y)},
			{X: float64(box.Max.X), Y: float64(box.Min.Y)},
			{X: float64(box.Max.X), Y: float64(box.Max.Y)},
			{X: float64(box.Min.X), Y: float64(box.Max.Y)},
		},
	}
}
