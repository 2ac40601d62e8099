package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// schemaNode is the subset of JSON schema checked by verify
type schemaNode struct {
	Ref        string                `json:"$ref"`
	Defs       map[string]schemaNode `json:"$defs"`
	Properties map[string]schemaNode `json:"properties"`
	Required   []string              `json:"required"`
	Minimum    *float64              `json:"minimum"`
}

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	return verify(cfg, []byte(embeddedSchema))
}

func verify(cfg *Config, schemaData []byte) error {
	// parse schema
	var schema schemaNode
	if err := json.Unmarshal(schemaData, &schema); err != nil {
		return fmt.Errorf("parse schema: %w", err)
	}

	// convert config to JSON for validation
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	var configMap map[string]any
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	if err := checkNode(schema, schema.Defs, configMap, ""); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// basic validation - check required fields match
	if err := validateRequiredFields(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// checkNode walks the schema along the value, checking required properties and minimums
func checkNode(node schemaNode, defs map[string]schemaNode, value any, path string) error {
	if node.Ref != "" {
		name := strings.TrimPrefix(node.Ref, "#/$defs/")
		def, ok := defs[name]
		if !ok {
			return fmt.Errorf("%s: unresolved reference %s", path, node.Ref)
		}
		return checkNode(def, defs, value, path)
	}

	switch v := value.(type) {
	case map[string]any:
		for _, req := range node.Required {
			if _, ok := v[req]; !ok {
				return fmt.Errorf("%s is required", joinPath(path, req))
			}
		}
		for name, prop := range node.Properties {
			if pv, ok := v[name]; ok {
				if err := checkNode(prop, defs, pv, joinPath(path, name)); err != nil {
					return err
				}
			}
		}
	case float64:
		if node.Minimum != nil && v < *node.Minimum {
			return fmt.Errorf("%s must be at least %v, got %v", path, *node.Minimum, v)
		}
	}
	return nil
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// validateRequiredFields performs basic validation of required fields
func validateRequiredFields(cfg *Config) error {
	// check server config
	if cfg.Server.Listen == "" {
		return errors.New("server.listen is required")
	}
	if cfg.Server.Timeout == 0 {
		return errors.New("server.timeout is required")
	}

	// check database and api config
	if cfg.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if cfg.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if cfg.Site.URL == "" {
		return errors.New("site.url is required")
	}

	return nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() (*jsonschema.Schema, error) {
	return jsonschema.Reflect(&Config{}), nil
}
