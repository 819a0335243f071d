package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for shallow merge.
const (
	keySimulation = "simulation"
	keyBalancer   = "balancer"
	keyNarrative  = "narrative"
	keyCatalog    = "catalog"
	keyLogging    = "logging"
	keyOutput     = "output"
)

// knownTopLevelKeys lists the YAML keys that correspond to exported Config fields.
// Keys not in this list are silently ignored during merge.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var knownTopLevelKeys = map[string]bool{
	keySimulation: true,
	keyBalancer:   true,
	keyNarrative:  true,
	keyCatalog:    true,
	keyLogging:    true,
	keyOutput:     true,
}

// ShallowMergeYAML loads a YAML file and merges its top-level keys onto
// the target Config. Keys present in the overlay replace entire sections
// in the target. Keys absent in the overlay are left unchanged.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]any
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	// Empty or comment-only file: nothing to merge.
	if len(overlay) == 0 {
		return nil
	}

	for key, value := range overlay {
		if !knownTopLevelKeys[key] {
			continue
		}

		// Re-marshal the single section so it can be decoded onto the typed field.
		sectionBytes, marshalErr := yaml.Marshal(value)
		if marshalErr != nil {
			return fmt.Errorf("re-marshalling overlay section %q: %w", key, marshalErr)
		}

		if err = unmarshalSection(target, key, sectionBytes); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}

	return nil
}

// unmarshalSection decodes data into a fresh zero value of the section named
// by key and replaces that section of target with it.
func unmarshalSection(target *Config, key string, data []byte) error {
	switch key {
	case keySimulation:
		return replaceSection(data, &target.Simulation)
	case keyBalancer:
		return replaceSection(data, &target.Balancer)
	case keyNarrative:
		apiKey := target.Narrative.APIKey
		if err := replaceSection(data, &target.Narrative); err != nil {
			return err
		}
		target.Narrative.APIKey = apiKey
		return nil
	case keyCatalog:
		return replaceSection(data, &target.Catalog)
	case keyLogging:
		return replaceSection(data, &target.Logging)
	case keyOutput:
		return replaceSection(data, &target.Output)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
}

func replaceSection[T any](data []byte, dst *T) error {
	var v T
	if err := yaml.Unmarshal(data, &v); err != nil {
		return err
	}
	*dst = v
	return nil
}
