// Package validation checks configuration and request input.
//
// Struct tag validation runs go-playground/validator over config structs;
// field names in messages follow their mapstructure or json keys:
//
//	type Config struct {
//	    BaseURL string `mapstructure:"base_url" validate:"required,url"`
//	}
//	err := validation.Validate(cfg)
//
// Programmatic validation collects field errors for request input:
//
//	v := validation.New()
//	v.Custom(req.Toggle || req.Provider != "", "provider", "provider or toggle is required")
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
