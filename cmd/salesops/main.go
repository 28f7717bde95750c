// Package main provides the entry point for the salesops CLI.
package main

import (
	"github.com/andrefarina/salesops-cli-go/internal/cli"
)

func main() {
	cli.Execute()
}
