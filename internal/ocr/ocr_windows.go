//go:build windows

// Package ocr wraps Tesseract to turn receipt photos into text fragments.
package ocr

import (
	"errors"

	"github.com/foxxcyber/receipt-grammar/internal/models"
)

// ErrUnavailable is returned on platforms without a Tesseract build
var ErrUnavailable = errors.New("OCR is not available on Windows - run in Docker container")

// Engine is a stub on Windows
type Engine struct{}

// New always fails on Windows
func New(language string, gapFactor float64) (*Engine, error) {
	return nil, ErrUnavailable
}

// Recognize always fails on Windows
func (e *Engine) Recognize(imageBytes []byte) ([]models.Fragment, error) {
	return nil, ErrUnavailable
}

// RecognizeFile always fails on Windows
func (e *Engine) RecognizeFile(path string) ([]models.Fragment, error) {
	return nil, ErrUnavailable
}

// Close does nothing
func (e *Engine) Close() error {
	return nil
}
