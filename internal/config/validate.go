package config

import (
	"fmt"
	"net/url"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	validProviders := []string{"gemini"}
	if cfg.LLM.Provider != "" && !slices.Contains(validProviders, cfg.LLM.Provider) {
		issues = append(issues, ValidationIssue{
			Path:    "llm.provider",
			Message: fmt.Sprintf("must be one of %v, got %q", validProviders, cfg.LLM.Provider),
		})
	}
	if cfg.LLM.MaxTokens < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "llm.maxTokens",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.LLM.MaxTokens),
		})
	}
	if cfg.LLM.Temperature != nil && (*cfg.LLM.Temperature < 0 || *cfg.LLM.Temperature > 2) {
		issues = append(issues, ValidationIssue{
			Path:    "llm.temperature",
			Message: fmt.Sprintf("must be in [0, 2], got %v", *cfg.LLM.Temperature),
		})
	}

	if cfg.WhatsApp.Endpoint != "" {
		if _, err := url.Parse(cfg.WhatsApp.Endpoint); err != nil {
			issues = append(issues, ValidationIssue{
				Path:    "whatsapp.endpoint",
				Message: "must be a valid URL: " + err.Error(),
			})
		}
	}

	// Telephony credentials travel together
	if (cfg.Telephony.AccountSID == "") != (cfg.Telephony.AuthToken == "") {
		issues = append(issues, ValidationIssue{
			Path:    "telephony",
			Message: "accountSid and authToken must both be set or both be empty",
		})
	}

	if cfg.Agent.ClosingPauseSeconds < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "agent.closingPauseSeconds",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.Agent.ClosingPauseSeconds),
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validConsoleStyles := []string{"pretty", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	return issues
}
