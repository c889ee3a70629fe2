//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Unit runs the package tests with the race detector.
func (Test) Unit() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}

// Vet runs go vet.
func (Test) Vet() error {
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}

// Demo records a frame trace with freshly compiled shaders.
func (Test) Demo() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("run", "./cmd/vrsdemo", "-shaders", shaderDir, "-overlay"), withStream())
	return err
}
