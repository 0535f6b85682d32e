package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/couchcryptid/firefront/internal/geometry"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidRequest wraps every request-level input problem.
var ErrInvalidRequest = errors.New("invalid request")

var validate = validator.New()

// ParseRequest decodes, validates and resolves a JSON simulation request.
func ParseRequest(body []byte) (SimulationConfig, error) {
	var req SimulationRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&req); err != nil {
		return SimulationConfig{}, fmt.Errorf("%w: decode body: %w", ErrInvalidRequest, err)
	}
	return ResolveRequest(req)
}

// ResolveRequest validates an already-decoded request and parses its perimeter.
func ResolveRequest(req SimulationRequest) (SimulationConfig, error) {
	if err := validate.Struct(req); err != nil {
		return SimulationConfig{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	perimeter, err := geometry.FromGeoJSON(req.Perimeter)
	if err != nil {
		return SimulationConfig{}, fmt.Errorf("%w: perimeter: %w", ErrInvalidRequest, err)
	}
	return req.Config(perimeter), nil
}

// ParseRawEvent decodes a Kafka request. When the body carries no id, the
// run_id header or the message key is used instead.
func ParseRawEvent(raw RawEvent) (SimulationConfig, error) {
	var req SimulationRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return SimulationConfig{}, fmt.Errorf("%w: parse raw event: %w", ErrInvalidRequest, err)
	}
	if req.ID == "" {
		req.ID = raw.RunIDHint()
	}
	return ResolveRequest(req)
}

// SerializeResult encodes a result as the sink-topic message.
func SerializeResult(res Result) (OutputEvent, error) {
	value, err := json.Marshal(res.FeatureCollection())
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize result: %w", err)
	}
	return OutputEvent{
		Key:   []byte(res.Meta.RunID),
		Value: value,
		Headers: map[string]string{
			HeaderRunID:    res.Meta.RunID,
			"hours":        strconv.Itoa(len(res.Fronts)),
			"processed_at": Now().UTC().Format(time.RFC3339),
		},
	}, nil
}
