package sift

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds batch configuration. It is read-only once passed to New and
// is shared by every task in a batch.
type Config struct {
	ConcurrencyLimit int           `json:"concurrency_limit" yaml:"concurrency_limit" mapstructure:"concurrency_limit" validate:"min=1"`
	Timeout          time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	MaxRetries       int           `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"min=0"`
	RetryDelay       time.Duration `json:"retry_delay" yaml:"retry_delay" mapstructure:"retry_delay" validate:"min=0"`

	// BatchTimeout bounds the whole Scrape call; 0 disables it.
	BatchTimeout time.Duration `json:"batch_timeout" yaml:"batch_timeout" mapstructure:"batch_timeout" validate:"min=0"`

	// RateLimit paces fetch attempts across the batch in requests per
	// second; 0 disables pacing.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit" validate:"min=0"`
	RateBurst int     `json:"rate_burst" yaml:"rate_burst" mapstructure:"rate_burst" validate:"min=0"`

	UserAgent   string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodySize int    `json:"max_body_size" yaml:"max_body_size" mapstructure:"max_body_size" validate:"min=0"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ConcurrencyLimit: 5,
		Timeout:          30 * time.Second,
		MaxRetries:       3,
		RetryDelay:       time.Second,
	}
}

// ErrInvalidConfig is returned by New and Scrape when the configuration is
// rejected. No task is started in that case.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s %s (got %v)", e.Field(), formatValidationError(e), e.Value()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "min":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}
