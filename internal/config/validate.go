package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ValidationError is a configuration error located in a file, optionally at
// a line and column or on a specific key.
type ValidationError struct {
	FilePath string
	Line     int
	Column   int
	Message  string
	// Field is the dotted config key, e.g. "notes.max_commits".
	Field string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	case e.Field != "":
		return fmt.Sprintf("%s: field '%s': %s", e.FilePath, e.Field, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
	}
}

// ValidateYAMLSyntax checks that the file at filePath is well-formed YAML.
// A missing or empty file is valid.
func ValidateYAMLSyntax(filePath string) error {
	data, err := os.ReadFile(filePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case errors.Is(err, os.ErrPermission):
		return &ValidationError{FilePath: filePath, Message: "permission denied"}
	case err != nil:
		return &ValidationError{FilePath: filePath, Message: err.Error()}
	}
	return ValidateYAMLSyntaxFromBytes(data, filePath)
}

// ValidateYAMLSyntaxFromBytes checks that data is well-formed YAML. filePath
// is only used in error messages.
func ValidateYAMLSyntaxFromBytes(data []byte, filePath string) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	var node yaml.Node
	err := yaml.Unmarshal(data, &node)
	if err == nil {
		return nil
	}

	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return &ValidationError{FilePath: filePath, Message: strings.Join(typeErr.Errors, "; ")}
	}

	line, column := yamlErrorPosition(err.Error())
	return &ValidationError{
		FilePath: filePath,
		Line:     line,
		Column:   column,
		Message:  yamlErrorDetail(err.Error()),
	}
}

// configValidator reports field names by their koanf key.
var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateConfigValues checks value constraints on cfg. All violations are
// reported; Field names the first one.
func ValidateConfigValues(cfg *Configuration, filePath string) error {
	err := configValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{FilePath: filePath, Message: err.Error()}
	}

	messages := make([]string, 0, len(fieldErrs))
	for i, fe := range fieldErrs {
		msg := describeViolation(fe)
		if i > 0 {
			msg = fmt.Sprintf("%s %s", fieldKey(fe.Namespace()), msg)
		}
		messages = append(messages, msg)
	}
	return &ValidationError{
		FilePath: filePath,
		Field:    fieldKey(fieldErrs[0].Namespace()),
		Message:  strings.Join(messages, "; "),
	}
}

// fieldKey strips the struct name from a validator namespace such as
// "Configuration.notes.max_commits". Slice indexes stay attached, e.g.
// "dependency_tables[1]".
func fieldKey(namespace string) string {
	_, key, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return key
}

// yamlErrorPosition extracts the position from a yaml.v3 message such as
// "yaml: line 5: could not find expected ':'". It returns 0, 0 when the
// message carries no line.
func yamlErrorPosition(msg string) (line, column int) {
	if n, _ := fmt.Sscanf(msg, "yaml: line %d: column %d:", &line, &column); n == 2 {
		return line, column
	}
	if n, _ := fmt.Sscanf(msg, "yaml: line %d:", &line); n == 1 {
		return line, 1
	}
	return 0, 0
}

// yamlErrorDetail drops the "yaml: line N:" prefix.
func yamlErrorDetail(msg string) string {
	if !strings.HasPrefix(msg, "yaml:") {
		return msg
	}
	if i := strings.LastIndex(msg, ": "); i > 0 {
		return msg[i+2:]
	}
	return msg
}

func describeViolation(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must list at least %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "excludesall":
		return "must be a file name, not a path"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
