package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
)

const (
	APP_NAME = "grove"
	ENV_FILE = "env"
)

var DEFAULT_ENV_FILE string = `GROVE_OPT=opt
GROVE_CLANG=clang
`

// Envs are the toolchain settings read from the env file in the config
// directory.
type Envs struct {
	OPT   string `env:"GROVE_OPT"`
	CLANG string `env:"GROVE_CLANG"`
}

func DefaultEnvs() *Envs {
	return &Envs{OPT: "opt", CLANG: "clang"}
}

func (e *Envs) Show(w io.Writer) {
	v := reflect.ValueOf(e).Elem()
	for i := range v.NumField() {
		field := v.Type().Field(i)
		if envTag := field.Tag.Get("env"); envTag != "" {
			fmt.Fprintf(w, "%s='%s'\n", envTag, v.Field(i).String())
		}
	}
}

// LoadEnvs reads the env file under the config directory, creating it with
// the defaults on first use.
func LoadEnvs() (*Envs, string, error) {
	dir, err := ConfigDir(APP_NAME)
	if err != nil {
		return nil, "", err
	}
	path := filepath.Join(dir, ENV_FILE)
	envs, err := LoadEnvFile(path)
	return envs, path, err
}

func LoadEnvFile(path string) (*Envs, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(DEFAULT_ENV_FILE), 0644); err != nil {
			return nil, err
		}
		return DefaultEnvs(), nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	env, err := parseEnv(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	envs := DefaultEnvs()
	MapEnvToStruct(env, envs)
	return envs, nil
}

func parseEnv(r io.Reader) (map[string]string, error) {
	env := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		env[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return env, nil
}

// MapEnvToStruct copies the entries of data into the string fields of result
// whose env tag names them. Missing entries leave the field untouched.
func MapEnvToStruct(data map[string]string, result any) {
	v := reflect.ValueOf(result).Elem()
	t := v.Type()

	for i := range t.NumField() {
		field := t.Field(i)
		fieldValue := v.Field(i)

		envTag := field.Tag.Get("env")
		if envTag == "" {
			continue
		}
		if value, ok := data[envTag]; ok && fieldValue.CanSet() && fieldValue.Kind() == reflect.String {
			fieldValue.SetString(value)
		}
	}
}

func ConfigDir(appName string) (string, error) {
	var configDir string

	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		configDir = filepath.Join(configHome, appName)
	} else if homeDir, err := os.UserHomeDir(); err == nil {
		if os.Getenv("OS") == "Windows_NT" {
			configDir = filepath.Join(os.Getenv("APPDATA"), appName)
		} else {
			configDir = filepath.Join(homeDir, ".config", appName)
		}
	} else {
		return "", fmt.Errorf("could not determine home directory")
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
