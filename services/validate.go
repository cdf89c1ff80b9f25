// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/campus-vote/apperr"
)

var validate = newValidator()

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

// check validates a request struct and reports the first failing field as
// an apperr invalid-argument error.
func check(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Invalid("invalid request")
	}

	fe := fieldErrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return apperr.Invalid(field + " is required")
	case "email":
		return apperr.Invalid(field + " must be a valid email address")
	case "url":
		return apperr.Invalid(field + " must be a valid URL")
	case "min":
		return apperr.Invalid(fmt.Sprintf("%s must be at least %s", field, fe.Param()))
	case "max":
		return apperr.Invalid(fmt.Sprintf("%s must be at most %s", field, fe.Param()))
	case "oneof":
		return apperr.Invalid(fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
	case "gtfield":
		return apperr.Invalid(fmt.Sprintf("%s must be after %s", field, snake(fe.Param())))
	default:
		return apperr.Invalid(field + " is invalid")
	}
}

// snake turns a Go field name like StartDate into its json name start_date.
func snake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
