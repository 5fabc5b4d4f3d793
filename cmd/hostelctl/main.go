// Command hostelctl is the command-line client for the hostel API.
package main

import (
	"os"

	"github.com/hostelhub/hostel-api/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
