// Package main is the entry point for the chargefeed service.
package main

import (
	"github.com/evatlas/chargefeed/cmd/chargefeed/cmd"
)

func main() {
	cmd.Execute()
}
