package fsm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kaptinlin/jsonrepair"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/fsmgen/pkg/domain"
)

var shape = validator.New(validator.WithRequiredStructEnabled())

// Decode stages reported by DecodeError.
const (
	StageSyntax = "syntax"
	StageShape  = "shape"
)

// DecodeError reports why a model reply could not be turned into a Document.
type DecodeError struct {
	Stage string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode FSM (%s): %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is makes every DecodeError match domain.ErrInvalidDocument.
func (e *DecodeError) Is(target error) bool {
	return target == domain.ErrInvalidDocument
}

// Violations lists the individual problems in a form suitable for model feedback.
func (e *DecodeError) Violations() []string {
	var verrs validator.ValidationErrors
	if !errors.As(e.Err, &verrs) {
		return []string{e.Err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Document.")
		out = append(out, fmt.Sprintf("field %s failed the %q rule", field, fe.Tag()))
	}
	return out
}

// Parse extracts the JSON payload from a model reply and decodes it into a
// Document. Strict JSON is tried first; when it fails the payload goes
// through a lenient repair pass. The decoded document must have the
// expected shape (initial state, at least one named state).
//
// Parse is meant for inspection. Documents that will be persisted as they
// were written go through ParseStrict.
func Parse(reply string) (*domain.Document, error) {
	payload := ExtractPayload(reply)

	doc, err := decodeStrict(payload)
	if err != nil {
		doc, err = decodeLenient(payload)
		if err != nil {
			return nil, &DecodeError{Stage: StageSyntax, Err: err}
		}
	}
	return checkShape(doc)
}

// ParseStrict is Parse without the repair pass: the payload must be valid JSON.
func ParseStrict(reply string) (*domain.Document, error) {
	doc, err := decodeStrict(ExtractPayload(reply))
	if err != nil {
		return nil, &DecodeError{Stage: StageSyntax, Err: err}
	}
	return checkShape(doc)
}

func checkShape(doc *domain.Document) (*domain.Document, error) {
	if err := shape.Struct(doc); err != nil {
		return nil, &DecodeError{Stage: StageShape, Err: err}
	}
	return doc, nil
}

func decodeStrict(payload string) (*domain.Document, error) {
	var doc domain.Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func decodeLenient(payload string) (*domain.Document, error) {
	raw, err := repairObject(payload)
	if err != nil {
		return nil, err
	}

	var doc domain.Document
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &doc,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("map repaired FSM: %w", err)
	}
	return &doc, nil
}

// repairObject runs the lenient repair pass and requires a JSON object as result.
func repairObject(payload string) (map[string]any, error) {
	repaired, err := jsonrepair.JSONRepair(payload)
	if err != nil {
		return nil, fmt.Errorf("repair FSM JSON: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
		return nil, fmt.Errorf("repaired FSM is not an object: %w", err)
	}
	return raw, nil
}
