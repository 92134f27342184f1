//go:build !windows

// Package ocr wraps Tesseract to turn receipt photos into text fragments.
package ocr

import (
	"fmt"
	"os"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/foxxcyber/receipt-grammar/internal/grammar"
	"github.com/foxxcyber/receipt-grammar/internal/models"
	"github.com/foxxcyber/receipt-grammar/internal/services"
)

// Engine runs Tesseract over receipt images. A gosseract client is not safe
// for concurrent use, so calls are serialized.
type Engine struct {
	mu        sync.Mutex
	client    *gosseract.Client
	gapFactor float64
}

// New creates an engine for the given Tesseract language
func New(language string, gapFactor float64) (*Engine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Receipts are a single column of variably spaced lines
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_COLUMN); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	return &Engine{client: client, gapFactor: gapFactor}, nil
}

// Recognize returns the receipt's text fragments in reading order
func (e *Engine) Recognize(imageBytes []byte) ([]models.Fragment, error) {
	prepared, err := services.PrepareImage(imageBytes)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.SetImageFromBytes(prepared); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	// Only the verbose call reports block, paragraph and line numbers
	boxes, err := e.client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("failed to extract words: %w", err)
	}

	words := make([]grammar.Word, len(boxes))
	for i, b := range boxes {
		words[i] = grammar.Word{
			Text:       b.Word,
			Confidence: b.Confidence / 100,
			Box:        b.Box,
			Block:      b.BlockNum,
			Paragraph:  b.ParNum,
			Line:       b.LineNum,
		}
	}
	return grammar.GroupWords(words, e.gapFactor), nil
}

// RecognizeFile reads an image from disk and recognizes it
func (e *Engine) RecognizeFile(path string) ([]models.Fragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return e.Recognize(data)
}

// Close releases Tesseract resources
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}
