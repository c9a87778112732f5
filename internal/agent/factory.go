package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/voxline/voxline/internal/config"
	"github.com/voxline/voxline/internal/llm"
)

// NewService selects a completion-driver implementation by provider name and
// wires it with the given collaborators.
func NewService(llmCfg config.LLMConfig, cfg Config, deps Deps) (Service, error) {
	switch strings.ToLower(llmCfg.Provider) {
	case "gemini":
		client := llm.NewGeminiClient(llmCfg.APIKey, llmCfg.Model)
		return NewDriver(cfg, client, deps), nil
	default:
		return nil, fmt.Errorf("unsupported llm service: %q", llmCfg.Provider)
	}
}

// ConfigFromApp derives the driver Config from application configuration.
func ConfigFromApp(cfg config.Config) Config {
	return Config{
		MaxTokens:     cfg.LLM.MaxTokens,
		Temperature:   cfg.LLM.Temperature,
		ClosingLine:   cfg.Agent.ClosingLine,
		ClosingPause:  secondsToDuration(cfg.Agent.ClosingPauseSeconds),
		TransferDelay: secondsToDuration(cfg.Agent.TransferDelaySeconds),
		HangupDelay:   secondsToDuration(cfg.Agent.HangupDelaySeconds),
	}
}

func secondsToDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}
