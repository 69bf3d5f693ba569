package config

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

const schemaFile = "config.cue"

// schemaSource constrains a decoded Config. Field names follow the json tags
// on Config, which is what cue.Context.Encode uses.
const schemaSource = `
#Config: {
	delayMs:  int & >0
	idPolicy: "counter" | "length"
	logLevel: "debug" | "info" | "warn" | "error"
	normalizeText: bool
}
`

// ValidationError describes one schema violation.
type ValidationError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every violation found in one config.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Validate checks cfg against the CUE schema. It returns ValidationErrors
// listing every violation, or nil.
func Validate(cfg Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename(schemaFile))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	value := ctx.Encode(cfg)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

// toValidationErrors flattens a CUE error list, keeping path and position.
func toValidationErrors(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return ValidationErrors{{Message: err.Error()}}
	}

	out := make(ValidationErrors, 0, len(errs))
	for _, e := range errs {
		format, args := e.Msg()
		ve := ValidationError{
			Field:   strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		if positions := cueerrors.Positions(e); len(positions) > 0 {
			ve.Pos = positions[0]
		}
		out = append(out, ve)
	}
	return out
}
