package configparser

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrNoFilePath = errors.New("no file path provided")

// ${VAR:-default}
var substitution = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*))?\}$`)

// LoadAndParseYaml exports the YAML file at filepath into the environment
// and then binds the environment onto dst.
// A missing file is not an error: defaults and real env vars still apply.
func LoadAndParseYaml(filepath string, dst any) error {
	if err := LoadYamlFile(filepath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return Parse(dst)
}

// LoadYamlFile reads a YAML file and exports every scalar leaf as an
// environment variable named after its path: database.host -> DATABASE_HOST.
// Variables already present in the environment are left untouched.
func LoadYamlFile(filepath string) error {
	if filepath == "" {
		return ErrNoFilePath
	}

	raw, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("could not open YAML file: %w", err)
	}

	var root map[string]any
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return fmt.Errorf("error reading YAML file: %w", err)
	}

	vars := make(map[string]string)
	flatten("", root, vars)

	for key, value := range vars {
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("could not set env var %s: %w", key, err)
		}
	}

	return nil
}

func flatten(prefix string, node any, out map[string]string) {
	switch v := node.(type) {
	case map[string]any:
		for k, child := range v {
			flatten(join(prefix, k), child, out)
		}
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, substitute(fmt.Sprint(item)))
		}
		out[prefix] = strings.Join(items, ",")
	case nil:
		// "key:" with no value exports nothing
	default:
		out[prefix] = substitute(fmt.Sprint(v))
	}
}

func join(prefix, key string) string {
	key = strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
	if prefix == "" {
		return key
	}
	return prefix + "_" + key
}

func substitute(value string) string {
	m := substitution.FindStringSubmatch(value)
	if m == nil {
		return value
	}
	if env := os.Getenv(m[1]); env != "" {
		return env
	}
	return m[2]
}
