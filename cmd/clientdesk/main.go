// Package main provides the clientdesk CLI.
package main

import (
	"os"

	"github.com/mesh-intelligence/clientdesk/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
