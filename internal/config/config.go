// Package config reads TOML config files for the command line flags.
package config

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Parser is an ff.ConfigFileParser for TOML files. Top-level keys are flag
// names. Nested tables are flattened with '-', so
//
//	[delete]
//	on-failure = true
//
// sets the flag "delete-on-failure". Arrays set the flag once per element.
func Parser(r io.Reader, set func(name, value string) error) error {
	var data map[string]interface{}
	if _, err := toml.NewDecoder(r).Decode(&data); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return setAll("", data, set)
}

func setAll(prefix string, data map[string]interface{}, set func(name, value string) error) error {
	// Sorted so that errors are reported deterministically.
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		name := k
		if prefix != "" {
			name = prefix + "-" + k
		}
		switch v := data[k].(type) {
		case map[string]interface{}:
			if err := setAll(name, v, set); err != nil {
				return err
			}
		case []interface{}:
			for _, elem := range v {
				s, err := stringify(name, elem)
				if err != nil {
					return err
				}
				if err := set(name, s); err != nil {
					return fmt.Errorf("config %s: %w", name, err)
				}
			}
		default:
			s, err := stringify(name, v)
			if err != nil {
				return err
			}
			if err := set(name, s); err != nil {
				return fmt.Errorf("config %s: %w", name, err)
			}
		}
	}
	return nil
}

func stringify(name string, v interface{}) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	default:
		return "", fmt.Errorf("config %s: unsupported value of type %T", name, v)
	}
}
