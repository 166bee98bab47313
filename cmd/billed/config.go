package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/BurntSushi/toml"
)

// parseTOML feeds a TOML config file to ff. Keys are flag names; nested
// tables are flattened with "-" so [ollama] url = "..." sets --ollama-url.
func parseTOML(r io.Reader, set func(name, value string) error) error {
	var doc map[string]any
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("decoding toml: %w", err)
	}
	return setTOML("", doc, set)
}

func setTOML(prefix string, doc map[string]any, set func(name, value string) error) error {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		name := k
		if prefix != "" {
			name = prefix + "-" + k
		}
		switch v := doc[k].(type) {
		case map[string]any:
			if err := setTOML(name, v, set); err != nil {
				return err
			}
		case []any:
			for _, item := range v {
				if err := set(name, fmt.Sprint(item)); err != nil {
					return err
				}
			}
		default:
			if err := set(name, fmt.Sprint(v)); err != nil {
				return err
			}
		}
	}
	return nil
}
