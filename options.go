package strata

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/strataconf/strata/merge"
)

// Option is a functional option for configuring Manager creation.
type Option func(*managerOptions)

// managerOptions holds the resolved construction options. The struct is
// checked with validator at construction time; an invalid combination is
// fatal and New returns no manager.
type managerOptions struct {
	EnableValidation bool           `validate:"-"`
	EnableCaching    bool           `validate:"-"`
	DefaultStrategy  merge.Strategy `validate:"oneof=override merge extend"`
	Logger           zerolog.Logger `validate:"-"`
}

func defaultManagerOptions() managerOptions {
	return managerOptions{
		EnableValidation: true,
		EnableCaching:    true,
		DefaultStrategy:  merge.StrategyMerge,
		Logger:           zerolog.Nop(),
	}
}

var optionsValidator = validator.New()

func (o managerOptions) validate() error {
	if err := optionsValidator.Struct(o); err != nil {
		return fmt.Errorf("invalid manager options: %w", err)
	}
	return nil
}

// WithValidation toggles fragment shape validation on Set. Enabled by
// default.
func WithValidation(enabled bool) Option {
	return func(o *managerOptions) {
		o.EnableValidation = enabled
	}
}

// WithCaching toggles the merged-result cache. Enabled by default.
func WithCaching(enabled bool) Option {
	return func(o *managerOptions) {
		o.EnableCaching = enabled
	}
}

// WithDefaultStrategy sets the merge strategy used by Get and Merge when no
// explicit options are given. Default is merge.StrategyMerge.
func WithDefaultStrategy(s merge.Strategy) Option {
	return func(o *managerOptions) {
		o.DefaultStrategy = s
	}
}

// WithLogger sets the logger used for debug-level operational logging.
// Default is a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *managerOptions) {
		o.Logger = log
	}
}
