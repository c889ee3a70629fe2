//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"

	"github.com/gogpu/vrs/shaders"
)

// shaderDir is where Build:Shaders writes the compiled programs.
const shaderDir = "build/shaders"

type Build mg.Namespace

// All builds the commands into ./bin.
func (Build) All() error {
	for _, name := range []string{"vrsdemo", "vrsmask"} {
		out := filepath.Join("bin", name)
		if _, err := executeCmd("go", withArgs("build", "-o", out, "./cmd/"+name), withStream()); err != nil {
			return err
		}
	}
	return nil
}

// Shaders compiles every permutation to SPIR-V under build/shaders.
func (Build) Shaders() error {
	if err := os.MkdirAll(shaderDir, 0o755); err != nil {
		return err
	}
	for _, p := range shaders.All() {
		code, err := shaders.Compile(p)
		if err != nil {
			return err
		}
		path := filepath.Join(shaderDir, shaders.FileName(p))
		if err := os.WriteFile(path, code, 0o644); err != nil {
			return err
		}
		fmt.Printf("%s: %d bytes\n", path, len(code))
	}
	return nil
}
