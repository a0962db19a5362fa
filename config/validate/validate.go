// Package validate checks decoded configuration values against declarative
// constraints and collects every violation.
//
// Constraints are declared with `validate` struct tags understood by
// go-playground/validator, plus a "pattern" rule taking a regular expression:
//
//	type Server struct {
//		Host string `yaml:"host" validate:"required,hostname"`
//		Port int    `yaml:"port" validate:"gte=1,lte=65535"`
//		Name string `yaml:"name" validate:"pattern=^[a-z-]+$"`
//	}
//
// Values that implement SelfValidator are also asked to validate themselves;
// their failures are reported next to the tag violations.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/0xalexb/hjarta-config/config/diag"
	"github.com/go-playground/validator/v10"
)

// DefaultTagName is the struct tag consulted first for field names in violation paths.
const DefaultTagName = "yaml"

// MessageNil is reported when a nil value is validated.
const MessageNil = "configuration must not be nil"

// SelfValidator is implemented by configuration types with rules that cannot
// be expressed as tags, such as cross-section checks.
type SelfValidator interface {
	Validate() error
}

// Validator runs tag constraints and SelfValidator hooks. It is safe for
// concurrent use.
type Validator struct {
	engine  *validator.Validate
	tagName string
}

// New creates a Validator whose violation paths use the given struct tag,
// falling back to json and then the Go field name. An empty tagName means DefaultTagName.
func New(tagName string) *Validator {
	if tagName == "" {
		tagName = DefaultTagName
	}

	engine := validator.New(validator.WithRequiredStructEnabled())
	engine.RegisterTagNameFunc(func(sf reflect.StructField) string {
		return fieldName(sf, tagName)
	})

	// Registration only fails for an empty tag or a nil func.
	_ = engine.RegisterValidation("pattern", matchPattern)

	return &Validator{
		engine:  engine,
		tagName: tagName,
	}
}

// Engine exposes the underlying constraint engine so callers can register
// their own rules.
func (v *Validator) Engine() *validator.Validate {
	return v.engine
}

// Validate returns every violation found in instance. An empty result means valid.
// Tag violations come first, in field declaration order, followed by those
// reported by a SelfValidator hook.
func (v *Validator) Validate(instance any) diag.ValidationErrors {
	rv := reflect.ValueOf(instance)
	if !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return diag.ValidationErrors{{Message: MessageNil}}
	}

	var out diag.ValidationErrors

	if isStruct(rv.Type()) {
		out = append(out, v.structViolations(instance)...)
	}

	if self, ok := instance.(SelfValidator); ok {
		out = append(out, hookViolations(self.Validate())...)
	}

	return out
}

func (v *Validator) structViolations(instance any) diag.ValidationErrors {
	err := v.engine.Struct(instance)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return diag.ValidationErrors{{Message: err.Error()}}
	}

	out := make(diag.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, diag.ValidationError{
			Field:   fieldPath(fe.Namespace()),
			Message: message(fe),
		})
	}

	return out
}

// hookViolations flattens the error returned by a SelfValidator.
func hookViolations(err error) diag.ValidationErrors {
	if err == nil {
		return nil
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out diag.ValidationErrors
		for _, e := range joined.Unwrap() {
			out = append(out, hookViolations(e)...)
		}

		return out
	}

	var violations diag.ValidationErrors
	if errors.As(err, &violations) {
		return violations
	}

	return diag.ValidationErrors{{Message: err.Error()}}
}

// fieldPath drops the root type name from a validator namespace:
// "Server.listen.port" becomes "listen.port".
func fieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return ""
	}

	return rest
}

func fieldName(sf reflect.StructField, tagName string) string {
	tag, ok := sf.Tag.Lookup(tagName)
	if !ok {
		tag, ok = sf.Tag.Lookup("json")
	}

	if !ok {
		return sf.Name
	}

	name, _, _ := strings.Cut(tag, ",")

	switch name {
	case "-":
		return ""
	case "":
		return sf.Name
	default:
		return name
	}
}

func isStruct(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t.Kind() == reflect.Struct
}

var patterns sync.Map // string -> *regexp.Regexp

func compiled(expr string) (*regexp.Regexp, error) {
	if re, ok := patterns.Load(expr); ok {
		return re.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", expr, err)
	}

	actual, _ := patterns.LoadOrStore(expr, re)

	return actual.(*regexp.Regexp), nil
}

// matchPattern implements the "pattern" rule. An invalid expression never matches.
func matchPattern(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}

	re, err := compiled(fl.Param())
	if err != nil {
		return false
	}

	return re.MatchString(fl.Field().String())
}
