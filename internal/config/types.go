package config

// Config is the root configuration for Voxline.
type Config struct {
	LLM       LLMConfig       `yaml:"llm,omitempty"`
	Telephony TelephonyConfig `yaml:"telephony,omitempty"`
	WhatsApp  WhatsAppConfig  `yaml:"whatsapp,omitempty"`
	Prompts   PromptsConfig   `yaml:"prompts,omitempty"`
	Contacts  ContactsConfig  `yaml:"contacts,omitempty"`
	Agent     AgentConfig     `yaml:"agent,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// LLMConfig selects and configures the model backend.
type LLMConfig struct {
	Provider    string   `yaml:"provider,omitempty"` // "gemini"
	APIKey      string   `yaml:"apiKey,omitempty"`
	Model       string   `yaml:"model,omitempty"`
	MaxTokens   int      `yaml:"maxTokens,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
}

// TelephonyConfig configures the call-control API client.
type TelephonyConfig struct {
	AccountSID     string `yaml:"accountSid,omitempty"`
	AuthToken      string `yaml:"authToken,omitempty"`
	TransferNumber string `yaml:"transferNumber,omitempty"`
	BaseURL        string `yaml:"baseUrl,omitempty"` // override for testing
}

// WhatsAppConfig configures the outbound messaging gateway.
type WhatsAppConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	APIKey   string `yaml:"apiKey,omitempty"`
}

// PromptsConfig holds the per-call prompt templates.
type PromptsConfig struct {
	SystemMessage  string `yaml:"systemMessage,omitempty"`
	InitialMessage string `yaml:"initialMessage,omitempty"`
}

// ContactsConfig locates the contact data file.
type ContactsConfig struct {
	Path string `yaml:"path,omitempty"`
}

// AgentConfig tunes conversation-flow behavior.
type AgentConfig struct {
	ClosingLine string `yaml:"closingLine,omitempty"`

	// Pauses in seconds. The closing pause lets the farewell be spoken
	// before hangup; transfer/hangup delays give the transport time to
	// flush audio before the control API mutates the call.
	ClosingPauseSeconds  int `yaml:"closingPauseSeconds,omitempty"`
	TransferDelaySeconds int `yaml:"transferDelaySeconds,omitempty"`
	HangupDelaySeconds   int `yaml:"hangupDelaySeconds,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"`        // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}
