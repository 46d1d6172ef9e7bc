package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/clipsave"
	"gopkg.in/yaml.v3"
)

// FileConfig is the layout of the YAML file passed with --config. Flags and
// environment variables take precedence over its values.
type FileConfig struct {
	DB          string              `yaml:"db"`
	DownloadDir string              `yaml:"downloadDir"`
	Strategy    string              `yaml:"strategy"`
	AssetsDir   string              `yaml:"assetsDir"`
	RateLimit   float64             `yaml:"rateLimit"`
	Save        clipsave.SaveConfig `yaml:"save"`
}

// LoadConfig reads the config file at path. An empty path yields an empty
// config. Unknown keys are rejected so typos do not go unnoticed.
func LoadConfig(path string) (*FileConfig, error) {
	cfg := &FileConfig{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// saveConfig merges the save flags over the file configuration.
func (c *SaveCmd) saveConfig(file *FileConfig) clipsave.SaveConfig {
	cfg := file.Save
	cfg.LocalBasePath = firstNonEmpty(c.BasePath, cfg.LocalBasePath)
	cfg.WebDAV.URL = firstNonEmpty(c.WebDAVURL, cfg.WebDAV.URL)
	cfg.WebDAV.Username = firstNonEmpty(c.WebDAVUser, cfg.WebDAV.Username)
	cfg.WebDAV.Password = firstNonEmpty(c.WebDAVPassword, cfg.WebDAV.Password)
	cfg.WebDAV.AuthScheme = clipsave.AuthScheme(firstNonEmpty(c.WebDAVAuth, string(cfg.WebDAV.AuthScheme)))
	cfg.WebDAV.BasePath = firstNonEmpty(c.WebDAVBasePath, cfg.WebDAV.BasePath)
	return cfg
}
