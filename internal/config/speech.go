package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// one language entry of the speech service catalog; the catalog is
// opaque external data and is not validated beyond shape
type SpeechLanguage struct {
	Name       string   `json:"name"`
	LanguageID string   `json:"languageId"`
	VoiceIDs   []string `json:"voiceIds"`
}

// remote speech service configuration; one instance serves all items
type SpeechConfig struct {
	URL         string            `json:"url"`
	AccountID   string            `json:"accountId"`
	SecretID    string            `json:"secretId"`
	MaxLength   int               `json:"max-length"`
	Languages   []SpeechLanguage  `json:"languages"`
	Preparation map[string]string `json:"preparation"`
	Download    map[string]string `json:"download"`
}

func LoadSpeech(path string) (*SpeechConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read speech config %s: %w", path, err)
	}

	var cfg SpeechConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse speech config %s: %w", path, err)
	}

	if cfg.MaxLength <= 0 {
		return nil, fmt.Errorf("speech config %s: max-length must be positive", path)
	}

	return &cfg, nil
}

// finds a language entry by its display name, case-insensitive
func (c *SpeechConfig) Language(name string) (*SpeechLanguage, error) {
	for i := range c.Languages {
		if strings.EqualFold(c.Languages[i].Name, name) {
			return &c.Languages[i], nil
		}
	}
	return nil, fmt.Errorf("unsupported language %q", name)
}
