/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// input.go decodes entity documents given to add and update.

package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrEmptyInput is returned when an input document has no content.
var ErrEmptyInput = errors.New("empty input")

// ReadInput decodes a YAML or JSON document from file into v. An empty
// file name or "-" reads stdin.
//
// The document is decoded generically and re-encoded as JSON before being
// unmarshalled into v, so the json tags on the store types are the only
// field names that matter for both formats.
func ReadInput(file string, v any) error {
	var data []byte
	var err error
	if file == "" || file == "-" {
		data, err = io.ReadAll(In())
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return DecodeInput(data, v)
}

// DecodeInput decodes a YAML or JSON document into v. Unknown fields are
// rejected so a misspelt field name is not silently dropped.
func DecodeInput(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmptyInput
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	return nil
}
