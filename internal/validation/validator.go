// Package validation checks the account and login forms before they are
// submitted, using go-playground/validator v10 with Portuguese messages.
// Validation is local only; the API runs its own checks.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// LoginForm is the login screen input.
type LoginForm struct {
	Email string `json:"email" validate:"required"`
	Senha string `json:"senha" validate:"required,min=8,max=20"`
}

// SignupForm is the registration screen input.
type SignupForm struct {
	Nome  string `json:"nome" validate:"required,max=255"`
	Email string `json:"email" validate:"required"`
	Senha string `json:"senha" validate:"required,min=8,max=20"`
}

// ProfileForm is the editable part of the account screen.
type ProfileForm struct {
	Nome  string `json:"nome" validate:"required,max=255"`
	Senha string `json:"senha" validate:"required,min=8,max=20"`
}

// MessageForm bounds the body of a composed message or reply.
type MessageForm struct {
	Corpo string `json:"corpo" validate:"max=10000"`
}

// subjects holds the phrase each message starts with for a field.
var subjects = map[string]string{
	"nome":  "O nome",
	"email": "O email",
	"senha": "A senha",
	"corpo": "A mensagem",
}

// FormError lists the first failing rule per field, in field order.
type FormError struct {
	fields   []string
	messages map[string]string
}

// Field returns the message for the named field, or "".
func (e *FormError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.messages[name]
}

// Fields returns the names of the failing fields.
func (e *FormError) Fields() []string {
	if e == nil {
		return nil
	}
	return append([]string(nil), e.fields...)
}

func (e *FormError) Error() string {
	parts := make([]string, 0, len(e.fields))
	for _, f := range e.fields {
		parts = append(parts, e.messages[f])
	}
	return strings.Join(parts, "; ")
}

func (e *FormError) add(field, msg string) {
	if _, ok := e.messages[field]; ok {
		return
	}
	e.fields = append(e.fields, field)
	e.messages[field] = msg
}

// Validator returns the shared validator instance. Field names in errors
// are the JSON names of the form fields.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
	})
	return validate
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// Validate checks form. It returns nil when every rule passes.
func Validate(form any) *FormError {
	err := Validator().Struct(form)
	if err == nil {
		return nil
	}

	fe := &FormError{messages: map[string]string{}}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fe.add("", err.Error())
		return fe
	}
	for _, v := range verrs {
		fe.add(v.Field(), translate(v.Field(), v.Tag(), v.Param()))
	}
	return fe
}

// FieldFunc returns a validation func for one string field of form, for
// use with a single input. name is the field's JSON name.
func FieldFunc(form any, name string) func(string) error {
	tag := ruleFor(reflect.TypeOf(form), name)
	return func(value string) error {
		if tag == "" {
			return nil
		}
		err := Validator().Var(value, tag)
		var verrs validator.ValidationErrors
		if err == nil || !errors.As(err, &verrs) || len(verrs) == 0 {
			return err
		}
		return errors.New(translate(name, verrs[0].Tag(), verrs[0].Param()))
	}
}

func ruleFor(t reflect.Type, name string) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return ""
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if jsonName(f) == name {
			return f.Tag.Get("validate")
		}
	}
	return ""
}

func translate(field, tag, param string) string {
	subject, ok := subjects[field]
	if !ok {
		subject = "O campo " + field
	}
	switch tag {
	case "required":
		return fmt.Sprintf("O campo %s é obrigatório", field)
	case "min":
		return fmt.Sprintf("%s deve ter no mínimo %s caracteres", subject, param)
	case "max":
		return fmt.Sprintf("%s deve ter no máximo %s caracteres", subject, param)
	default:
		return fmt.Sprintf("%s é inválido", subject)
	}
}
