// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wasmvalidate decodes a WebAssembly module and runs the static
// validator over it, reporting the first failure found.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go-interpreter/wasmvalidate/validate"
	"github.com/go-interpreter/wasmvalidate/wasm"
)

var version = "<unknown>"

func main() {
	if err := configureCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configureCLI() *cobra.Command {
	var verbose bool
	var workers int

	root := &cobra.Command{
		Use:           "wasmvalidate [path to module]",
		Short:         "Validate a WebAssembly module",
		Long:          "wasmvalidate decodes a .wasm file and checks it against the module and function validators",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			validate.SetDebug(verbose)
			return run(args[0], workers)
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "trace every opcode the function validator visits")
	root.PersistentFlags().IntVarP(&workers, "workers", "w", 1, "number of function bodies to validate concurrently")

	return root
}

func run(path string, workers int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	mod, err := wasm.DecodeModule(f)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	if err := validate.Definitions(mod); err != nil {
		return fmt.Errorf("module definitions: %w", err)
	}

	if workers > 1 {
		err = validate.CodeParallel(mod, workers)
	} else {
		err = validate.Code(mod)
	}
	if err != nil {
		return fmt.Errorf("function bodies: %w", err)
	}

	logrus.WithField("path", path).Info("module is valid")
	return nil
}
