package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Version is reported by the health endpoint and the CLI.
const Version = "0.1.0"

// Config holds the full service configuration. Values are loaded from the
// embedded etc/pookal.yaml, with ${ENV} references expanded so credentials
// can stay in the environment (or a .env file).
type Config struct {
	Port    int    `yaml:"port"`
	Persona string `yaml:"persona"`

	Provider ProviderConfig `yaml:"provider"`
	Route    RouteConfig    `yaml:"route"`
	Twilio   TwilioConfig   `yaml:"twilio"`
	Voice    VoiceConfig    `yaml:"voice"`
}

// ProviderConfig selects and configures the inference backends.
type ProviderConfig struct {
	// Preferred provider: "ollama", "openai", or "" for auto
	// (ollama when reachable, openai when a key is present).
	Prefer string `yaml:"prefer"`

	Ollama struct {
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"ollama"`

	OpenAI struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`
}

// RouteConfig configures the maps.safe_route capability.
// Base URLs are overridable so tests can point at local doubles.
type RouteConfig struct {
	ORSAPIKey        string `yaml:"ors_api_key"`
	ORSBaseURL       string `yaml:"ors_base_url"`
	NominatimBaseURL string `yaml:"nominatim_base_url"`
	UserAgent        string `yaml:"user_agent"`
}

// TwilioConfig configures the twilio.sms and twilio.call capabilities.
type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
	BaseURL    string `yaml:"base_url"`
}

// VoiceConfig configures the voice capture pipeline.
type VoiceConfig struct {
	// Listen window in seconds before capture auto-stops.
	ListenSeconds int `yaml:"listen_seconds"`

	// Whisper transcription (OpenAI-compatible endpoint).
	OpenAIAPIKey   string `yaml:"openai_api_key"`
	WhisperBaseURL string `yaml:"whisper_base_url"`

	// ElevenLabs synthesis.
	ElevenLabsAPIKey  string `yaml:"elevenlabs_api_key"`
	ElevenLabsBaseURL string `yaml:"elevenlabs_base_url"`
	VoiceName         string `yaml:"voice_name"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	var c Config
	c.Port = 27612
	c.Persona = "lily"
	c.Provider.Ollama.BaseURL = "http://127.0.0.1:11434"
	c.Provider.Ollama.Model = "llama3.2"
	c.Provider.OpenAI.Model = "gpt-4o-mini"
	c.Route.ORSBaseURL = "https://api.openrouteservice.org"
	c.Route.NominatimBaseURL = "https://nominatim.openstreetmap.org"
	c.Route.UserAgent = "Pookal/1.0"
	c.Twilio.BaseURL = "https://api.twilio.com"
	c.Voice.ListenSeconds = 4
	c.Voice.WhisperBaseURL = "https://api.openai.com"
	c.Voice.ElevenLabsBaseURL = "https://api.elevenlabs.io"
	c.Voice.VoiceName = "rachel"
	return c
}

// LoadFromBytes parses YAML config with environment variable expansion,
// layered over the defaults.
func LoadFromBytes(data []byte) (Config, error) {
	c := DefaultConfig()
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &c); err != nil {
		return c, err
	}
	return c, nil
}

// MergeFile layers a YAML file on disk over the current config, with
// environment variable expansion. The file overrides only the keys it
// sets. A missing file is an error: the caller named it explicitly.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	expanded := os.ExpandEnv(string(data))
	return yaml.Unmarshal([]byte(expanded), c)
}
