package crm

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// ErrSchema is returned when a dataset does not match the expected export shape.
var ErrSchema = errors.New("dataset does not match schema")

// Schema returns the JSON schema of a dataset export, inferred from DatasetDTO.
// Unknown properties are allowed so that richer exports still load.
func Schema() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[DatasetDTO](nil)
	if err != nil {
		return nil, fmt.Errorf("failed to infer dataset schema: %w", err)
	}
	allowUnknown(s)
	s.Title = "CRM dataset"
	return s, nil
}

func allowUnknown(s *jsonschema.Schema) {
	if s == nil {
		return
	}
	s.AdditionalProperties = nil
	for _, p := range s.Properties {
		allowUnknown(p)
	}
	allowUnknown(s.Items)
}

var resolvedSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	s, err := Schema()
	if err != nil {
		return nil, err
	}
	return s.Resolve(nil)
})

// Validate checks raw JSON against the dataset schema.
func Validate(raw []byte) error {
	resolved, err := resolvedSchema()
	if err != nil {
		return err
	}

	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if err := resolved.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return nil
}

// DecodeDataset validates raw JSON and decodes it into a DatasetDTO.
func DecodeDataset(raw []byte) (DatasetDTO, error) {
	var dto DatasetDTO
	if err := Validate(raw); err != nil {
		return dto, err
	}
	if err := json.Unmarshal(raw, &dto); err != nil {
		return dto, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return dto, nil
}
