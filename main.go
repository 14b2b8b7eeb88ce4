// Copyright 2026 The Trailpost Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/trailpost/trailpost/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
