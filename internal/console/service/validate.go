package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/BenAnderson8181/BusApp/internal/storage"
	"github.com/go-playground/validator/v10"
)

var (
	zipPattern   = regexp.MustCompile(`^\d{5}(?:[\s]?[-\s][\s]?\d{4})?$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9()\-.\s]{7,20}$`)
)

// validate is shared by every service; validator caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names so field errors match the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	must("zip", func(fl validator.FieldLevel) bool {
		return zipPattern.MatchString(fl.Field().String())
	})
	must("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	must("doctype", func(fl validator.FieldLevel) bool {
		return storage.AllowedContentType(fl.Field().String())
	})
	must("maxupload", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= storage.MaxUploadSize
	})
	return v
}

// check runs the validate tags of in and translates failures into
// domain.ValidationErrors, one entry per field.
func check(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return domain.Invalid("body", err.Error())
	}
	out := make(domain.ValidationErrors, 0, len(fes))
	for _, fe := range fes {
		out.Add(fe.Field(), reason(fe))
	}
	return out
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		if fe.Kind() == reflect.String {
			return "too short"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "too long"
		}
		return "must be at most " + fe.Param()
	case "len":
		return "must be " + fe.Param() + " characters"
	case "gt":
		if fe.Param() == "0" {
			return "must be positive"
		}
		return "must be more than " + fe.Param()
	case "gte":
		if fe.Param() == "0" {
			return "must not be negative"
		}
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "email":
		return "invalid email"
	case "url":
		return "invalid url"
	case "startswith":
		return "must start with " + fe.Param()
	case "zip", "phone":
		return "invalid format"
	case "doctype":
		return "unsupported file type"
	case "maxupload":
		return "larger than 4MB"
	}
	return "invalid"
}
