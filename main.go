// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/openrefuge/refuge/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
