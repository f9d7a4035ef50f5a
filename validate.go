package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is safe for concurrent use and caches struct metadata.
var validate = newValidator()

// newValidator reports fields by their JSON names so errors match the request body.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError lists every field that failed shape validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pipeline: invalid pipeline: %d field(s) failed validation", len(e.Fields))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidPipeline }

// Validate checks that p has the shape the checker expects.
// Nodes and edges must be present but may be empty.
func Validate(p *Pipeline) error {
	if p == nil {
		return fmt.Errorf("%w: nil pipeline", ErrInvalidPipeline)
	}

	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("pipeline: validate: %w", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s: failed '%s'", fe.Namespace(), fe.Tag()))
	}
	return &ValidationError{Fields: fields}
}

// Decode reads one JSON pipeline from r and validates it.
func Decode(r io.Reader) (*Pipeline, error) {
	var p Pipeline
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, decodeError(err)
	}
	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Unmarshal is Decode for a request body already in memory.
func Unmarshal(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, decodeError(err)
	}
	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// decodeError reports a well-formed body holding a value of the wrong JSON
// type as a ValidationError; anything else is a syntax error.
func decodeError(err error) error {
	var terr *json.UnmarshalTypeError
	if errors.As(err, &terr) {
		field := terr.Field
		if field == "" {
			field = "Pipeline"
		} else {
			field = "Pipeline." + field
		}
		return &ValidationError{Fields: []string{
			fmt.Sprintf("%s: failed 'type' (got %s, want %s)", field, terr.Value, terr.Type),
		}}
	}
	return fmt.Errorf("pipeline: decode: %w", err)
}
