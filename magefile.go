//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target when running mage without arguments.
var Default = Build

const versionPkg = "github.com/calshare/server/cmd/server/commands"

// ldflags stamps the version command with the current commit and date.
func ldflags() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		commit = "none"
	}
	return strings.Join([]string{
		"-X " + versionPkg + ".Version=" + version,
		"-X " + versionPkg + ".GitCommit=" + commit,
		"-X " + versionPkg + ".BuildDate=" + time.Now().UTC().Format(time.RFC3339),
	}, " ")
}

// Build builds the server binary.
func Build() error {
	mg.Deps(Generate)
	fmt.Println("Building server...")
	return sh.Run("go", "build", "-ldflags", ldflags(), "-o", "bin/calshare", "./cmd/server")
}

// Generate runs all code generation (wire, swagger).
func Generate() error {
	mg.Deps(Wire, Swagger)
	return nil
}

// Wire runs wire to generate dependency injection code.
func Wire() error {
	fmt.Println("Running wire...")
	return sh.Run("wire", "./internal/app")
}

// Swagger regenerates the API docs from handler annotations.
func Swagger() error {
	fmt.Println("Generating swagger docs...")
	return sh.Run("swag", "init",
		"-g", "docs.go",
		"-d", "./cmd/server,./internal/adapter/inbound/http,./internal/port/inbound,./internal/model,./internal/utils/errors",
		"-o", "./cmd/server/docs",
		"--outputTypes", "go",
	)
}

// Test runs all tests.
func Test() error {
	fmt.Println("Running tests...")
	return sh.Run("go", "test", "-race", "./...")
}

// TestCover runs tests with coverage.
func TestCover() error {
	fmt.Println("Running tests with coverage...")
	return sh.Run("go", "test", "-cover", "-coverprofile=coverage.out", "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	fmt.Println("Running linter...")
	return sh.Run("golangci-lint", "run", "./...")
}

// Vet runs go vet.
func Vet() error {
	fmt.Println("Running go vet...")
	return sh.Run("go", "vet", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	fmt.Println("Cleaning...")
	if err := os.RemoveAll("bin"); err != nil {
		return err
	}
	_ = os.Remove("coverage.out")
	return nil
}

// Tidy runs go mod tidy.
func Tidy() error {
	fmt.Println("Running go mod tidy...")
	return sh.Run("go", "mod", "tidy")
}

// All runs tidy, generate, vet, lint, test, and build.
func All() error {
	mg.SerialDeps(Tidy, Generate, Vet, Lint, Test, Build)
	return nil
}

// Migrate namespace groups the schema migration targets.
type Migrate mg.Namespace

// Up applies all pending migrations.
func (Migrate) Up() error {
	mg.Deps(Build)
	return sh.RunV("./bin/calshare", "migrate", "up")
}

// Down reverts all migrations.
func (Migrate) Down() error {
	mg.Deps(Build)
	return sh.RunV("./bin/calshare", "migrate", "down")
}

// Dev builds and runs the server on in-memory storage.
func Dev() error {
	mg.Deps(Build)
	fmt.Println("Starting server...")
	cmd := exec.Command("./bin/calshare", "serve")
	cmd.Env = append(os.Environ(),
		"CALSHARE_STORAGE_DRIVER=memory",
		"CALSHARE_SERVER_MODE=debug",
		"CALSHARE_LOG_FORMAT=console",
		"CALSHARE_LOG_LEVEL=debug",
		"CALSHARE_JWT_SECRET=dev-only-secret-dev-only-secret-0000",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// CI runs the CI pipeline (tidy, generate, vet, test with coverage).
func CI() error {
	mg.SerialDeps(Tidy, Generate, Vet, TestCover)
	return nil
}

// Install installs development tools.
func Install() error {
	fmt.Println("Installing development tools...")

	tools := []string{
		"github.com/google/wire/cmd/wire@v0.7.0",
		"github.com/swaggo/swag/cmd/swag@v1.16.6",
		"github.com/golangci/golangci-lint/cmd/golangci-lint@latest",
	}

	for _, tool := range tools {
		fmt.Printf("  Installing %s\n", tool)
		if err := sh.Run("go", "install", tool); err != nil {
			return fmt.Errorf("installing %s: %w", tool, err)
		}
	}

	return nil
}
