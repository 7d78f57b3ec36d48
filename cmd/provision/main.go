// Package main provides the entry point for the provision CLI.
package main

import "os"

func main() {
	os.Exit(Execute())
}
