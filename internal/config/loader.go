package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so keys and tokens can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.LLM.APIKey = expandEnvVars(cfg.LLM.APIKey)
	cfg.Telephony.AccountSID = expandEnvVars(cfg.Telephony.AccountSID)
	cfg.Telephony.AuthToken = expandEnvVars(cfg.Telephony.AuthToken)
	cfg.Telephony.TransferNumber = expandEnvVars(cfg.Telephony.TransferNumber)
	cfg.WhatsApp.APIKey = expandEnvVars(cfg.WhatsApp.APIKey)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "gemini"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gemini-1.5-flash"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 300
	}
	if cfg.LLM.Temperature == nil {
		temp := 0.7
		cfg.LLM.Temperature = &temp
	}
	if cfg.WhatsApp.Endpoint == "" {
		cfg.WhatsApp.Endpoint = "http://api.textmebot.com"
	}
	if cfg.Agent.ClosingLine == "" {
		cfg.Agent.ClosingLine = "Thank you for your time. Looking forward to meeting you!"
	}
	if cfg.Agent.ClosingPauseSeconds == 0 {
		cfg.Agent.ClosingPauseSeconds = 2
	}
	if cfg.Agent.TransferDelaySeconds == 0 {
		cfg.Agent.TransferDelaySeconds = 8
	}
	if cfg.Agent.HangupDelaySeconds == 0 {
		cfg.Agent.HangupDelaySeconds = 5
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = "pretty"
	}
}

// applyEnvOverrides reads VOXLINE_* environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VOXLINE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("VOXLINE_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("VOXLINE_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("VOXLINE_LLM_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LLM.MaxTokens = n
		}
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("TWILIO_ACCOUNT_SID"); v != "" && cfg.Telephony.AccountSID == "" {
		cfg.Telephony.AccountSID = v
	}
	if v := os.Getenv("TWILIO_AUTH_TOKEN"); v != "" && cfg.Telephony.AuthToken == "" {
		cfg.Telephony.AuthToken = v
	}
	if v := os.Getenv("TRANSFER_NUMBER"); v != "" && cfg.Telephony.TransferNumber == "" {
		cfg.Telephony.TransferNumber = v
	}
}
