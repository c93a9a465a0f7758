package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// fieldMessages holds the client-facing text for each failing field.
var fieldMessages = map[string]string{
	"status":       "Status is required",
	"skills":       "Skills is required",
	"title":        "Title is required",
	"company":      "Company is required",
	"school":       "School is required",
	"degree":       "Degree is required",
	"fieldofstudy": "Field of study is required",
	"from":         "From date is required",
	"text":         "Text is required",
	"name":         "Name is required",
	"email":        "Please include a valid email",
	"password":     "Please enter a password with 6 or more characters",
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateStruct(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	ve := &ValidationError{}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		ve.Fields = append(ve.Fields, FieldError{Msg: msg, Param: fe.Field()})
	}
	return ve
}

func fieldError(param, msg string) error {
	return &ValidationError{Fields: []FieldError{{Msg: msg, Param: param}}}
}
