package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// jsonCookie accepts both lower and upper camel case keys, which covers
// cookie exports from browser extensions and .NET style dumps.
type jsonCookie struct {
	Name       string `json:"name"`
	Value      string `json:"value"`
	NameUpper  string `json:"Name"`
	ValueUpper string `json:"Value"`
}

// LoadCookie turns a -cookie argument into a Cookie header value.
//
// If value names an existing file, the file must hold a JSON array of
// cookies ({"name": ..., "value": ...}) and they are joined as
// "a=1; b=2". Otherwise value is used verbatim as the header value.
func LoadCookie(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}

	info, err := os.Stat(value)
	if err != nil || info.IsDir() {
		return value, nil
	}

	data, err := os.ReadFile(value)
	if err != nil {
		return "", fmt.Errorf("read cookie file: %w", err)
	}

	var cookies []jsonCookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return "", fmt.Errorf("parse cookie file %s: %w", value, err)
	}

	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		name, val := c.Name, c.Value
		if name == "" {
			name, val = c.NameUpper, c.ValueUpper
		}
		if name == "" {
			continue
		}
		parts = append(parts, name+"="+val)
	}
	if len(parts) == 0 {
		return "", errors.New("cookie file contains no cookies")
	}

	return strings.Join(parts, "; "), nil
}
