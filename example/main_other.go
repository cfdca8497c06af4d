//go:build !windows

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "the example requires Windows and a Direct3D9 device")
	os.Exit(1)
}
