package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// field codings supported by content descriptions
const (
	CodingPlate  = "plate"
	CodingBase64 = "base64"
)

// one entry of the contents-list; raw fields are decoded lazily
// through the document's coding
type ContentItem struct {
	Name      string   `json:"name"`
	Text      string   `json:"text"`
	ImageURLs []string `json:"image-urls-list"`
}

// the structured content description driving one render run
type ContentDocument struct {
	Coding     string        `json:"coding"`
	Language   string        `json:"language"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Font       string        `json:"font"`
	Logo       string        `json:"logo"`
	Background string        `json:"background"`
	LogoWidth  int           `json:"logo-width"`
	LogoHeight int           `json:"logo-height"`
	Contents   []ContentItem `json:"contents-list"`
}

func LoadContent(path string) (*ContentDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content description %s: %w", path, err)
	}

	var doc ContentDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse content description %s: %w", path, err)
	}

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("content description %s: %w", path, err)
	}

	return &doc, nil
}

func (d *ContentDocument) Validate() error {
	switch strings.ToLower(d.Coding) {
	case CodingPlate, CodingBase64:
	default:
		return fmt.Errorf("unsupported coding %q", d.Coding)
	}

	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", d.Width, d.Height)
	}

	if len(d.Contents) == 0 {
		return fmt.Errorf("empty contents-list")
	}

	return nil
}

// Decode resolves a coded field value. Plate values pass through;
// base64 values are base64-decoded and then percent-decoded.
func (d *ContentDocument) Decode(value string) (string, error) {
	switch strings.ToLower(d.Coding) {
	case CodingPlate:
		return value, nil
	case CodingBase64:
		if value == "" {
			return "", nil
		}
		raw, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return "", fmt.Errorf("decode base64 field: %w", err)
		}
		decoded, err := url.QueryUnescape(string(raw))
		if err != nil {
			return "", fmt.Errorf("unescape field: %w", err)
		}
		return decoded, nil
	default:
		return "", fmt.Errorf("unsupported coding %q", d.Coding)
	}
}

// decoded display name of an item, may be empty
func (d *ContentDocument) ItemName(item ContentItem) (string, error) {
	return d.Decode(item.Name)
}

// decoded narration text of an item
func (d *ContentDocument) ItemText(item ContentItem) (string, error) {
	return d.Decode(item.Text)
}
