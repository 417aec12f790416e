package router

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ICD-10 code: letter, two alphanumerics, optional dotted extension.
var icd10Pattern = regexp.MustCompile(`^[A-TV-Z][0-9][0-9A-Z](\.[0-9A-Z]{1,4})?$`)

// registerValidations installs custom binding rules on gin's validator
// engine. Safe to call more than once.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("icd10", func(fl validator.FieldLevel) bool {
		return icd10Pattern.MatchString(fl.Field().String())
	})
}
