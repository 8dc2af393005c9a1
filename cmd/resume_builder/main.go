// Package main provides the entry point for the interactive resume builder.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_builder",
	Short: "Interactive resume tailoring assistant",
	Long: "Resume Builder collects your resume, stores it as JSON, and uses a language model " +
		"to tailor it to a job posting and write a matching cover letter.",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runMenu,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
