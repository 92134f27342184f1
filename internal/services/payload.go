package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/foxxcyber/receipt-grammar/internal/models"
)

// ErrInvalidPayload is returned when an extraction request fails validation
var ErrInvalidPayload = errors.New("invalid extraction payload")

const extractRequestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"vendor": {"type": "string", "enum": ["", "lidl", "sainsbury", "tesco"]},
		"tokens": {
			"type": "array",
			"maxItems": 5000,
			"items": {"type": "string", "maxLength": 512}
		},
		"fragments": {
			"type": "array",
			"maxItems": 5000,
			"items": {
				"type": "object",
				"required": ["text"],
				"properties": {
					"text": {"type": "string", "maxLength": 512},
					"confidence": {"type": "number", "minimum": 0, "maximum": 1},
					"polygon": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["x", "y"],
							"properties": {"x": {"type": "number"}, "y": {"type": "number"}}
						}
					}
				}
			}
		}
	},
	"oneOf": [
		{"required": ["tokens"], "not": {"required": ["fragments"]}},
		{"required": ["fragments"], "not": {"required": ["tokens"]}}
	]
}`

// PayloadValidator checks extraction requests against a JSON schema
type PayloadValidator struct {
	schema *jsonschema.Schema
}

// NewPayloadValidator compiles the request schema
func NewPayloadValidator() (*PayloadValidator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("extract_request.json", strings.NewReader(extractRequestSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("extract_request.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &PayloadValidator{schema: schema}, nil
}

// DecodeExtractRequest validates raw JSON and decodes it
func (v *PayloadValidator) DecodeExtractRequest(raw []byte) (*models.ExtractRequest, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var req models.ExtractRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &req, nil
}

// DecodeTokenFile reads a token file as written by OCR tooling: either a bare
// JSON array of strings or a full extraction request object. A non-empty
// vendor overrides the file's.
func (v *PayloadValidator) DecodeTokenFile(raw []byte, vendor models.Vendor) (*models.ExtractRequest, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var tokens []string
		if err := json.Unmarshal(trimmed, &tokens); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if tokens == nil {
			tokens = []string{}
		}
		return &models.ExtractRequest{Vendor: vendor, Tokens: tokens}, nil
	}

	req, err := v.DecodeExtractRequest(trimmed)
	if err != nil {
		return nil, err
	}
	if vendor != "" {
		req.Vendor = vendor
	}
	return req, nil
}
