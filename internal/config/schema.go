package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://github.com/Norgate-AV/fader/config.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})

	return schema, schemaErr
}

// ValidateFile checks the file at path against the configuration schema
func ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	return Validate(data, FormatFor(path))
}

// Validate checks a document against the configuration schema. Unlike Resolve,
// which repairs what it can, this reports every deviation. TOML and YAML
// documents are normalised through JSON first so the schema sees JSON types.
func Validate(data []byte, format Format) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}

	var doc map[string]any
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		_, err = toml.Decode(string(data), &doc)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", format, err)
	}

	normalised, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("normalise document: %w", err)
	}

	var instance any
	if err := json.Unmarshal(normalised, &instance); err != nil {
		return fmt.Errorf("normalise document: %w", err)
	}

	if err := s.Validate(instance); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return nil
}
