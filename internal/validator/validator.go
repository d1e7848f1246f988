package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aretw0/formflow/pkg/domain"
)

// VariableNamePattern is the accepted shape of a question's variable name.
var VariableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// structValidate is shared by every check in this package.
// Initialized in init() with the form-specific validators.
var structValidate *validator.Validate

func init() {
	structValidate = validator.New(validator.WithRequiredStructEnabled())
	_ = structValidate.RegisterValidation("questiontype", func(fl validator.FieldLevel) bool {
		return domain.QuestionType(fl.Field().String()).Valid()
	})
	_ = structValidate.RegisterValidation("varname", func(fl validator.FieldLevel) bool {
		return VariableNamePattern.MatchString(fl.Field().String())
	})
}

// FieldError is one rejected field with a message fit for an editor UI.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Errors collects every rejected field of one value.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Error()
	}
	return strings.Join(parts, "; ")
}

// ValidateNode checks a question's fields.
func ValidateNode(n domain.Node) error {
	errs := collect(structValidate.Struct(n))
	if n.Data.Type.HasOptions() && len(n.Data.Options) == 0 {
		errs = append(errs, FieldError{
			Field:   "options",
			Rule:    "required",
			Message: "Choice questions need at least one option",
		})
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateEdge checks a transition's fields.
func ValidateEdge(e domain.Edge) error {
	errs := collect(structValidate.Struct(e))
	if e.Source == "" {
		errs = append(errs, FieldError{Field: "source", Rule: "required", Message: "Source node ID is required"})
	}
	if e.Target == "" {
		errs = append(errs, FieldError{Field: "target", Rule: "required", Message: "Target node ID is required"})
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateSettings checks form-level settings.
func ValidateSettings(s domain.Settings) error {
	errs := collect(structValidate.Struct(s))
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func collect(err error) Errors {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{{Field: "", Rule: "invalid", Message: err.Error()}}
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fieldName(fe),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

// fieldName turns "Node.Data.VariableName" into "variableName".
func fieldName(fe validator.FieldError) string {
	name := fe.StructField()
	if name == "" {
		return fe.Field()
	}
	if name == "PDFURL" {
		return "pdfUrl"
	}
	if strings.HasSuffix(name, "URL") {
		return strings.ToLower(name[:1]) + name[1:len(name)-3] + "Url"
	}
	return strings.ToLower(name[:1]) + name[1:]
}

var labels = map[string]string{
	"Question":         "Question",
	"Type":             "Question type",
	"VariableName":     "Variable name",
	"HelpText":         "Help text",
	"Options":          "Options",
	"ImageURL":         "Image URL",
	"VideoURL":         "Video URL",
	"PDFURL":           "PDF URL",
	"MediaTypes":       "Media types",
	"X":                "Position",
	"Y":                "Position",
	"SourceVariable":   "Condition variable",
	"Operator":         "Operator",
	"LogicalOperator":  "Logical operator",
	"CustomExpression": "Custom expression",
	"FormName":         "Form name",
}

func message(fe validator.FieldError) string {
	field := fe.StructField()
	if i := strings.IndexByte(field, '['); i > 0 {
		field = field[:i]
	}
	label, ok := labels[field]
	if !ok {
		label = field
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "max":
		switch fe.Kind().String() {
		case "slice":
			return fmt.Sprintf("Maximum %s %s allowed", fe.Param(), strings.ToLower(label))
		case "float64":
			return fmt.Sprintf("%s must be at most %s", label, fe.Param())
		}
		if field == "Options" {
			return fmt.Sprintf("Each option must be less than %s characters", fe.Param())
		}
		return fmt.Sprintf("%s must be less than %s characters", label, fe.Param())
	case "min":
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("%s cannot be empty when provided", label)
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "url":
		return label + " must be a valid URL"
	case "questiontype":
		return "Invalid question type selected"
	case "varname":
		return "Variable name must start with a letter or underscore and contain only letters, numbers, and underscores"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	}
	return fmt.Sprintf("%s failed the %q rule", label, fe.Tag())
}
