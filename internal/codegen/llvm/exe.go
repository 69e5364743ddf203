package llvm

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/grove-lang/grove/internal/config"
)

func (b *Backend) WriteIR(path string) error {
	return os.WriteFile(path, []byte(b.module.String()), 0644)
}

// WriteExecutable optimizes the module with opt and links it with clang
// into output. The intermediate files live in a temporary directory that
// is removed afterwards unless keep is set.
func (b *Backend) WriteExecutable(output string, buildType config.BuildType, envs *config.Envs, keep bool, logger *log.Logger) error {
	dir, err := os.MkdirTemp("", "build")
	if err != nil {
		return err
	}

	irFileName := filepath.Join(dir, filepath.Base(output))
	irFilepath := irFileName + ".ll"
	optimizedIrFilepath := irFileName + "_optimized.ll"

	if err := b.WriteIR(irFilepath); err != nil {
		return err
	}

	var optLevel string
	var compilerFlags []string
	switch buildType {
	case config.RELEASE:
		optLevel = "-O3"
		compilerFlags = append(compilerFlags, "-Wl,-s")
	case config.DEBUG:
		optLevel = "-O0"
	default:
		return fmt.Errorf("invalid build type: %s", buildType)
	}

	if err := run(logger, envs.OPT, optLevel, "-S", "-o", optimizedIrFilepath, irFilepath); err != nil {
		return err
	}
	args := append(compilerFlags, optLevel, "-o", output, optimizedIrFilepath)
	if err := run(logger, envs.CLANG, args...); err != nil {
		return err
	}

	if keep {
		logger.Printf("keeping build directory %s", dir)
		return nil
	}
	return os.RemoveAll(dir)
}

func run(logger *log.Logger, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Printf("run %s", cmd)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w\n%s", cmd, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}
