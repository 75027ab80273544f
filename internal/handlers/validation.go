package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"cinecore/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// report json field names instead of Go struct field names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// bindJSON decodes the body into dst and runs its binding tags. The first
// failed rule becomes a ValidationError on that field.
func bindJSON(c *gin.Context, dst interface{}) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.Validation(fe.Field(), ruleMessage(fe))
	}
	return apperr.Validation("body", "malformed JSON: "+err.Error())
}

func ruleMessage(fe validator.FieldError) string {
	unit := "characters"
	switch fe.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		unit = "items"
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64, reflect.Float64:
		unit = ""
	}
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "eqfield":
		return "must match " + strings.ToLower(fe.Param())
	case "min":
		return strings.TrimSpace(fmt.Sprintf("must have at least %s %s", fe.Param(), unit))
	case "max":
		return strings.TrimSpace(fmt.Sprintf("must have at most %s %s", fe.Param(), unit))
	case "gt":
		return "must be greater than " + fe.Param()
	}
	return fmt.Sprintf("failed the %q rule", fe.Tag())
}
