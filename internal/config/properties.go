package config

import (
	"fmt"

	"github.com/joho/godotenv"
)

// flat key=value configuration file, read once and queried for
// fallback values the content description may omit
type Properties map[string]string

func LoadProperties(path string) (Properties, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read properties %s: %w", path, err)
	}
	return Properties(values), nil
}

// returns the value for key, or empty string when absent
func (p Properties) Get(key string) string {
	return p[key]
}

// well-known property keys
const (
	KeyOutputPath     = "output-path"
	KeyFontPath       = "font-path"
	KeyBackgroundPath = "background-path"
	KeyLogoPath       = "logo-path"
)
