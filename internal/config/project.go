// Package config holds the build settings of a project: the grove.yml file
// next to the sources and the toolchain env file in the user config
// directory.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const PROJECT_FILE = "grove.yml"

type Project struct {
	Name         string    `yaml:"name"`
	Main         string    `yaml:"main"`
	BuildType    BuildType `yaml:"build_type"`
	Emit         Emit      `yaml:"emit"`
	TargetTriple string    `yaml:"target_triple,omitempty"`
	Output       string    `yaml:"output,omitempty"`
	Verbose      bool      `yaml:"verbose"`
}

func DefaultProject(name string) *Project {
	return &Project{
		Name:      name,
		Main:      "main.grv",
		BuildType: DEBUG,
		Emit:      EMIT_EXE,
	}
}

// LoadProject reads grove.yml from dir. A directory without one gets the
// defaults, named after the directory.
func LoadProject(dir string) (*Project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(abs)

	file, err := os.Open(filepath.Join(abs, PROJECT_FILE))
	if os.IsNotExist(err) {
		return DefaultProject(name), nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	project, err := DecodeProject(file, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Name(), err)
	}
	return project, nil
}

// DecodeProject parses a project file on top of the defaults. Unknown keys
// are rejected.
func DecodeProject(r io.Reader, name string) (*Project, error) {
	project := DefaultProject(name)

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(project); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if project.Main == "" {
		return nil, fmt.Errorf("'main' must name a source file")
	}
	return project, nil
}

// OutputPath is where the build artifact of the project goes.
func (p *Project) OutputPath() string {
	if p.Output != "" {
		return p.Output
	}
	base := strings.TrimSuffix(filepath.Base(p.Main), filepath.Ext(p.Main))
	switch p.Emit {
	case EMIT_LLVM_IR:
		return base + ".ll"
	case EMIT_TRACE:
		return base + ".trace"
	}
	return base
}

func (p *Project) Encode(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(p)
}
