package middlewares

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"civicfix-be/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the domain enum tags used in request bodies:
// voteType, issuePriority and issueStatus.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("voteType", func(fl validator.FieldLevel) bool {
			return models.VoteType(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("issuePriority", func(fl validator.FieldLevel) bool {
			return models.IssuePriority(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("issueStatus", func(fl validator.FieldLevel) bool {
			return models.IssueStatus(fl.Field().String()).Valid()
		})
	})
}

// ValidationDetails flattens binding errors into field -> failed tag.
func ValidationDetails(err error) map[string]any {
	details := map[string]any{}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		for _, fe := range errs {
			details[fe.Field()] = fe.Tag()
		}
		return details
	}
	details["body"] = err.Error()
	return details
}
