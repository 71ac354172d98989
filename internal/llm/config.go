// Package llm provides centralized LLM configuration and client abstractions.
// The judgment service behind candidate evaluation, coordination and letter writing is
// reached only through the Client interface, so providers can be swapped per run.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: slug resolution, letter review
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: candidate evaluation, coordination
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning: planning, query refinement, letter drafting
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderCohere is the Cohere chat provider
	ProviderCohere Provider = "cohere"
)

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float64
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: 0.1,
	}
}

// DefaultCohereConfig returns the default Cohere configuration
func DefaultCohereConfig() *Config {
	return &Config{
		Provider: ProviderCohere,
		Models: map[ModelTier]string{
			TierLite:     "command-r7b-12-2024",
			TierStandard: "command-r-08-2024",
			TierAdvanced: "command-r-plus-08-2024",
		},
		Temperature: 0.2,
	}
}

// ConfigFor returns the default configuration of a provider name, falling back to Gemini
func ConfigFor(provider string) *Config {
	if Provider(provider) == ProviderCohere {
		return DefaultCohereConfig()
	}
	return DefaultGeminiConfig()
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider:    c.Provider,
		Models:      make(map[ModelTier]string),
		Temperature: c.Temperature,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
