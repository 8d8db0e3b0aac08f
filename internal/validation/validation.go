// Package validation checks signup and login payloads before they reach the
// user store.
//
// Two kinds of failure are reported. An ordinary failure is a missing, empty
// or malformed scalar and sends the user back to the form. An injection
// failure is a field whose value is not a plain string at all (an object,
// array, number, null or a bracketed form key); such payloads could change
// the meaning of a store query and are rejected outright.
package validation

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Kind int

const (
	KindOrdinary Kind = iota + 1
	KindInjection
)

func (k Kind) String() string {
	switch k {
	case KindOrdinary:
		return "ordinary"
	case KindInjection:
		return "injection"
	default:
		return "unknown"
	}
}

// Payload is a decoded request body keyed by field name. Values keep the
// shape they arrived in so non-string input can be detected.
type Payload map[string]any

type FieldError struct {
	Field string
	Kind  Kind
	Rule  string
	Param string
}

func (e *FieldError) Error() string {
	return e.Kind.String() + " validation error on " + e.Field + " (" + e.Rule + ")"
}

// Message is the text shown next to the form.
func (e *FieldError) Message() string {
	if e.Kind == KindInjection {
		return "Suspicious input was rejected."
	}

	switch e.Rule {
	case "required":
		switch e.Field {
		case "name":
			return "Please provide a name."
		case "email":
			return "Please provide an email address."
		case "password":
			return "Please provide a password."
		}
		return "Please provide " + e.Field + "."
	case "email":
		return "Please provide a valid email address."
	case "max":
		return strings.ToUpper(e.Field[:1]) + e.Field[1:] + " must be at most " + e.Param + " characters."
	case "maxbytes":
		return strings.ToUpper(e.Field[:1]) + e.Field[1:] + " is too long."
	default:
		return "Please check the " + e.Field + " field."
	}
}

// Result is either Ok (Err == nil) or a single field error.
type Result struct {
	Err *FieldError
}

func (r Result) OK() bool {
	return r.Err == nil
}

func (r Result) Injection() bool {
	return r.Err != nil && r.Err.Kind == KindInjection
}

type SignupInput struct {
	Name     string `form:"name" validate:"required,max=100"`
	Email    string `form:"email" validate:"required,email,max=254"`
	Password string `form:"password" validate:"required,maxbytes=72"`
}

type LoginInput struct {
	Email    string `form:"email" validate:"required,email,max=254"`
	Password string `form:"password" validate:"required,maxbytes=72"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return sf.Name
		}
		return name
	})

	// bcrypt rejects passwords longer than 72 bytes; max counts runes.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})

	return v
}

func ValidateSignup(p Payload) (SignupInput, Result) {
	if fe := checkScalars(p, "name", "email", "password"); fe != nil {
		return SignupInput{}, Result{Err: fe}
	}

	in := SignupInput{
		Name:     strings.TrimSpace(stringField(p, "name")),
		Email:    strings.TrimSpace(stringField(p, "email")),
		Password: stringField(p, "password"),
	}

	if fe := checkStruct(in); fe != nil {
		return SignupInput{}, Result{Err: fe}
	}

	return in, Result{}
}

func ValidateLogin(p Payload) (LoginInput, Result) {
	if fe := checkScalars(p, "email", "password"); fe != nil {
		return LoginInput{}, Result{Err: fe}
	}

	in := LoginInput{
		Email:    strings.TrimSpace(stringField(p, "email")),
		Password: stringField(p, "password"),
	}

	if fe := checkStruct(in); fe != nil {
		return LoginInput{}, Result{Err: fe}
	}

	return in, Result{}
}

// checkScalars flags any present field that is not a plain string.
// Absent fields are left to the struct rules.
func checkScalars(p Payload, fields ...string) *FieldError {
	for _, f := range fields {
		v, ok := p[f]
		if !ok {
			continue
		}
		if _, isString := v.(string); !isString {
			return &FieldError{Field: f, Kind: KindInjection, Rule: "string"}
		}
	}
	return nil
}

func checkStruct(in any) *FieldError {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return &FieldError{
			Field: first.Field(),
			Kind:  KindOrdinary,
			Rule:  first.Tag(),
			Param: first.Param(),
		}
	}

	return &FieldError{Field: "payload", Kind: KindOrdinary, Rule: "invalid"}
}

func stringField(p Payload, key string) string {
	s, _ := p[key].(string)
	return s
}
