//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Imports the sample assets through the example binary.
func (Run) Example() error {
	fmt.Println("Run example...")
	if _, err := executeCmd("go", withArgs("run", "main.go", "assets/models/cube.gltf"), withStream()); err != nil {
		return err
	}
	return nil
}
