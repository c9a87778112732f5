package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	temp := 0.7
	return Config{
		LLM: LLMConfig{
			Provider:    "gemini",
			Model:       "gemini-1.5-flash",
			MaxTokens:   300,
			Temperature: &temp,
		},
		WhatsApp: WhatsAppConfig{
			Endpoint: "http://api.textmebot.com",
		},
		Agent: AgentConfig{
			ClosingLine:          "Thank you for your time. Looking forward to meeting you!",
			ClosingPauseSeconds:  2,
			TransferDelaySeconds: 8,
			HangupDelaySeconds:   5,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}
