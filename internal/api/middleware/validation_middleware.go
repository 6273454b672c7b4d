package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/proup-app/proup-api/pkg/logger"
	"go.uber.org/zap"
)

const (
	ValidatedModelKey = "validated_model"
	ValidatedQueryKey = "validated_query"

	dateLayout = "2006-01-02"
)

// ValidationMiddleware handles request validation
type ValidationMiddleware struct {
	validator *validator.Validate
	log       *logger.Logger
}

// NewValidationMiddleware creates a new validation middleware
func NewValidationMiddleware(log *logger.Logger) *ValidationMiddleware {
	v := validator.New()

	// Report fields by their JSON or form names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation("not_empty", validateNotEmpty)
	_ = v.RegisterValidation("date", validateDate)

	return &ValidationMiddleware{
		validator: v,
		log:       log,
	}
}

// Struct validates an already bound value.
func (m *ValidationMiddleware) Struct(value interface{}) error {
	return m.validator.Struct(value)
}

// ValidateRequest validates the request body against the provided struct
func (m *ValidationMiddleware) ValidateRequest(model interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		modelValue := newModel(model)

		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		if err := json.Unmarshal(bodyBytes, modelValue); err != nil {
			m.log.Debug("JSON unmarshal failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}

		if !m.check(c, modelValue) {
			return
		}

		c.Set(ValidatedModelKey, modelValue)
		c.Next()
	}
}

// ValidateQuery validates query parameters against the provided struct
func (m *ValidationMiddleware) ValidateQuery(model interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		modelValue := newModel(model)

		if err := c.ShouldBindQuery(modelValue); err != nil {
			m.log.Debug("Failed to bind query parameters",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
			return
		}

		if !m.check(c, modelValue) {
			return
		}

		c.Set(ValidatedQueryKey, modelValue)
		c.Next()
	}
}

func (m *ValidationMiddleware) check(c *gin.Context, modelValue interface{}) bool {
	err := m.validator.Struct(modelValue)
	if err == nil {
		return true
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		m.log.Error("Validation could not run", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return false
	}

	details := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		details[fe.Field()] = formatValidationError(fe)
	}

	m.log.Debug("Validation failed",
		zap.Any("errors", details),
		zap.String("path", c.Request.URL.Path),
	)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":   "validation failed",
		"details": details,
	})
	return false
}

func newModel(model interface{}) interface{} {
	modelType := reflect.TypeOf(model)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	return reflect.New(modelType).Interface()
}

// Validated returns the model stored by ValidateRequest, falling back to
// binding the body when the middleware did not run.
func Validated[T any](c *gin.Context) (*T, bool) {
	if v, ok := c.Get(ValidatedModelKey); ok {
		if model, ok := v.(*T); ok {
			return model, true
		}
	}
	var model T
	if err := c.ShouldBindJSON(&model); err != nil {
		return nil, false
	}
	return &model, true
}

// Custom validators
func validateNotEmpty(fl validator.FieldLevel) bool {
	return len(strings.TrimSpace(fl.Field().String())) > 0
}

func validateDate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.Parse(dateLayout, value)
	return err == nil
}

// Helper function to format validation errors
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "invalid email format"
	case "min", "gte":
		return "value is too small"
	case "max", "lte":
		return "value is too large"
	case "oneof":
		return "must be one of: " + err.Param()
	case "not_empty":
		return "this field cannot be empty"
	case "uuid":
		return "invalid UUID format"
	case "date":
		return "invalid date, expected YYYY-MM-DD"
	default:
		return "invalid value"
	}
}
