package theme

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// SchemaError lists every configuration field that failed the structural check.
type SchemaError struct {
	Fields []FieldError
}

// FieldError is one failing configuration field.
type FieldError struct {
	Path string `json:"path"` // JSON path, e.g. "colors.cyber.pink"
	Rule string `json:"rule"` // validator tag that failed
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Path + " (" + f.Rule + ")"
	}
	return "theme configuration failed schema check: " + strings.Join(parts, ", ")
}

var (
	schemaOnce     sync.Once
	schemaValidate *validator.Validate
)

func schema() *validator.Validate {
	schemaOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("colorpair", validateColorPair)
		schemaValidate = v
	})
	return schemaValidate
}

// validateColorPair requires a non-empty DEFAULT and hover variant.
func validateColorPair(fl validator.FieldLevel) bool {
	pair, ok := fl.Field().Interface().(ColorPair)
	if !ok {
		return false
	}
	return pair[VariantDefault] != "" && pair["hover"] != ""
}

// CheckSchema verifies that every required leaf of the configuration is
// present. It never fills in defaults.
func CheckSchema(cfg *Configuration) error {
	if cfg == nil {
		return &SchemaError{Fields: []FieldError{{Path: "configuration", Rule: "required"}}}
	}
	err := schema().Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("schema check: %w", err)
	}
	out := &SchemaError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Path: strings.TrimPrefix(fe.Namespace(), "Configuration."),
			Rule: fe.Tag(),
		})
	}
	return out
}
