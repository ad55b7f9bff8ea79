package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// DefaultEnvFile is loaded by LoadEnv when no file is given
const DefaultEnvFile = ".env"

// LoadFile parse the config from the file of the path. Files ending with
// .yaml or .yml are parsed as YAML, the others as TOML.
func LoadFile(path string, v interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(file, v)
	default:
		return LoadReader(file, v)
	}
}

// LoadString parse the config from the string
func LoadString(data string, v interface{}) error {
	return LoadReader(bytes.NewReader([]byte(data)), v)
}

// LoadReader parse the config from the file of the reader
func LoadReader(r io.Reader, v interface{}) error {
	if _, err := toml.DecodeReader(r, v); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// LoadYAML parse the YAML config from the reader
func LoadYAML(r io.Reader, v interface{}) error {
	if err := yaml.NewDecoder(r).Decode(v); err != nil && err != io.EOF {
		return errors.WithStack(err)
	}
	return nil
}

// LoadEnv sets the variables of the env files that are not set yet.
// Without files it loads DefaultEnvFile when it exists.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return nil
		}
		files = []string{DefaultEnvFile}
	}
	if err := godotenv.Load(files...); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
