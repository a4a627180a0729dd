// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var loadEnvOnce sync.Once

// loadEnv reads .env files into the process environment. It is called from
// init but also from flag-default helpers, which may run before this file's
// init depending on file order.
func loadEnv() {
	loadEnvOnce.Do(func() {
		_ = godotenv.Load(".env.local", ".env")
	})
}

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})

	loadEnv()
}

var rootCmd = &cobra.Command{
	Use:   "refuge",
	Short: "locates shelters and social services near a location",
	Long: `
refuge searches the open web for shelters, meal programs and other social
services around a location, verifies that each result is a real provider,
collapses duplicates and ranks what remains.
`,
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
