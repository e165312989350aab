// SPDX-License-Identifier: MIT
package main

import (
	"os"
	"runtime"

	"spectro/cmd"
	"spectro/internal/log"
	"spectro/pkg/build"
)

// main hands off to the command tree. Live capture needs one thread for the
// PortAudio callback and one for the pump and I/O.
func main() {
	info := build.InitializeOrDefault()

	runtime.GOMAXPROCS(2)

	if err := cmd.Execute(info, os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}
}
