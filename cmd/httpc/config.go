package main

import (
	"time"

	"github.com/elastic/go-ucfg"
	"github.com/elastic/go-ucfg/yaml"
)

// fileConfig is the shape of the optional YAML config file passed via
// --config. Every field is optional; zero values fall back to
// httpc.DefaultOptions().
type fileConfig struct {
	ConnectTimeout  time.Duration `config:"connectTimeout"`
	ConnectDelay    time.Duration `config:"connectDelay"`
	Timeout         time.Duration `config:"timeout"`
	FollowRedirects *int          `config:"followRedirects"`
	Logger          struct {
		Stdout     bool   `config:"stdout"`
		Level      string `config:"level"`
		Filename   string `config:"filename"`
		MaxSize    int    `config:"maxSize"`
		MaxAge     int    `config:"maxAge"`
		MaxBackups int    `config:"maxBackups"`
	} `config:"logger"`
}

// loadFileConfig reads a YAML config file at path into a fileConfig. A
// file that is missing or cannot be read is returned as an error;
// loadOptions does not call it when no --config path was given.
func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	cfg, err := yaml.NewConfigWithFile(path, ucfg.PathSep("."))
	if err != nil {
		return fc, err
	}
	if err := cfg.Unpack(&fc); err != nil {
		return fc, err
	}
	return fc, nil
}
