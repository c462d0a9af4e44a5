package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIConfig holds connection settings shared by the OpenAI embedder and
// reader clients.
type OpenAIConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the embedding collaborator.
// Dim fixes the vector width the index is built with; it must match the
// model's output width for the OpenAI embedder.
type EmbedderConfig struct {
	Type   string        `yaml:"type"` // "openai" or "hashing"
	Dim    int           `yaml:"dim,omitempty"`
	OpenAI *OpenAIConfig `yaml:"openai,omitempty"`
}

// ReaderConfig selects and configures the answer generator.
type ReaderConfig struct {
	Type   string        `yaml:"type"` // "openai" or "extractive"
	OpenAI *OpenAIConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how document text is split into passages.
// OverlapChars must be positive and strictly below MaxChars.
type ChunkerConfig struct {
	MaxChars     int `yaml:"max_chars"`
	OverlapChars int `yaml:"overlap_chars"`
}

// QdrantConfig contains connection details for a Qdrant vector index.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// IndexConfig selects and configures the vector index implementation.
// Path is where the flat index persists itself.
type IndexConfig struct {
	Type   string        `yaml:"type"` // "flat" or "qdrant"
	Path   string        `yaml:"path"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// MetadataConfig selects and configures the passage metadata store.
type MetadataConfig struct {
	Type string `yaml:"type"` // "memory", "bolt" or "sqlite"
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP daemon.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	TopK           int    `yaml:"top_k"`
	MaxUploadMB    int    `yaml:"max_upload_mb"`
	ModelCallLimit int    `yaml:"model_call_limit"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder EmbedderConfig `yaml:"embedder"`
	Reader   ReaderConfig   `yaml:"reader"`
	Chunker  ChunkerConfig  `yaml:"chunker"`
	Index    IndexConfig    `yaml:"index"`
	Metadata MetadataConfig `yaml:"metadata"`
	Server   ServerConfig   `yaml:"server"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/ragh/config.yaml.
// If neither exists, it writes defaults to ~/.config/ragh/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragh", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder: EmbedderConfig{Type: "hashing"},
		Reader:   ReaderConfig{Type: "extractive"},
		Chunker:  ChunkerConfig{MaxChars: 1800, OverlapChars: 200},
		Index:    IndexConfig{Type: "flat", Path: filepath.Join("data", "index.gob")},
		Metadata: MetadataConfig{Type: "bolt", Path: filepath.Join("data", "metadata.db")},
		Server:   ServerConfig{Addr: ":8080", TopK: 5, MaxUploadMB: 50, ModelCallLimit: 4},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Chunker.MaxChars == 0 {
		cfg.Chunker.MaxChars = 1800
	}
	if cfg.Chunker.OverlapChars == 0 {
		cfg.Chunker.OverlapChars = 200
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = "flat"
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = filepath.Join("data", "index.gob")
	}
	if cfg.Metadata.Type == "" {
		cfg.Metadata.Type = "bolt"
	}
	if cfg.Metadata.Path == "" {
		cfg.Metadata.Path = filepath.Join("data", "metadata.db")
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.TopK == 0 {
		cfg.Server.TopK = 5
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 50
	}
	if cfg.Server.ModelCallLimit == 0 {
		cfg.Server.ModelCallLimit = 4
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIConfig{}
		}
		applyOpenAIDefaults(cfg.Embedder.OpenAI, "text-embedding-3-small")
		if cfg.Embedder.Dim == 0 {
			cfg.Embedder.Dim = 1536
		}
	}
	if cfg.Embedder.Dim == 0 {
		cfg.Embedder.Dim = 512
	}
	if cfg.Reader.Type == "openai" {
		if cfg.Reader.OpenAI == nil {
			cfg.Reader.OpenAI = &OpenAIConfig{}
		}
		applyOpenAIDefaults(cfg.Reader.OpenAI, "gpt-4o-mini")
	}
	if cfg.Index.Type == "qdrant" && cfg.Index.Qdrant != nil {
		if cfg.Index.Qdrant.TimeoutSecs == 0 {
			cfg.Index.Qdrant.TimeoutSecs = 15
		}
		if cfg.Index.Qdrant.Collection == "" {
			cfg.Index.Qdrant.Collection = "ragh"
		}
	}
}

func applyOpenAIDefaults(c *OpenAIConfig, model string) {
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Model == "" {
		c.Model = model
	}
	if c.TimeoutSecs == 0 {
		c.TimeoutSecs = 60
	}
}
