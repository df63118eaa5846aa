package config

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Load reads a configuration file from the given path, layered over the
// defaults. The format is determined by the file extension:
// - .json for JSON
// - .yaml or .yml for YAML
// - .hcl for HCL
func Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		err = loadJSON(data, cfg)
	case ".yaml", ".yml":
		err = loadYAML(data, cfg)
	case ".hcl":
		err = loadHCL(data, path, cfg)
	default:
		return nil, errors.Errorf("unsupported config file extension %q", ext)
	}
	if err != nil {
		return nil, err
	}

	if err := Validate(ctx, cfg); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// loadJSON loads a configuration from JSON data
func loadJSON(data []byte, cfg *Config) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return errors.Errorf("parsing JSON: %w", err)
	}
	return nil
}

// loadYAML loads a configuration from YAML data
func loadYAML(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return errors.Errorf("parsing YAML: %w", err)
	}
	return nil
}

// loadHCL loads a configuration from HCL data
func loadHCL(data []byte, filename string, cfg *Config) error {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// HCL schema; optional attributes leave defaults untouched
	type hclConfig struct {
		ChunkSize  *int     `hcl:"chunk_size,optional"`
		MaxLatency *int     `hcl:"max_latency,optional"`
		Priority   *string  `hcl:"priority,optional"`
		Exclude    []string `hcl:"exclude,optional"`
		Force      *bool    `hcl:"force,optional"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return errors.Errorf("decoding HCL: %s", diags.Error())
	}

	if hclCfg.ChunkSize != nil {
		cfg.ChunkSize = *hclCfg.ChunkSize
	}
	if hclCfg.MaxLatency != nil {
		cfg.MaxLatency = *hclCfg.MaxLatency
	}
	if hclCfg.Priority != nil {
		cfg.Priority = Priority(*hclCfg.Priority)
	}
	if len(hclCfg.Exclude) > 0 {
		cfg.Exclude = hclCfg.Exclude
	}
	if hclCfg.Force != nil {
		cfg.Force = *hclCfg.Force
	}
	return nil
}
