package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the compile flags. Flags given on the command line win.
type fileConfig struct {
	Output   string   `yaml:"output"`
	Manifest string   `yaml:"manifest"`
	Validate *bool    `yaml:"validate"`
	Debug    bool     `yaml:"debug"`
	Schemas  []string `yaml:"schemas"`
}

func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// newLogger logs to stderr so generated output on stdout stays clean.
func newLogger(debug bool) (*zap.SugaredLogger, error) {
	var z zap.Config
	if debug {
		z = zap.NewDevelopmentConfig()
	} else {
		z = zap.NewProductionConfig()
	}
	z.OutputPaths = []string{"stderr"}
	z.ErrorOutputPaths = []string{"stderr"}
	logger, err := z.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Sugar(), nil
}
