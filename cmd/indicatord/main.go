// Package main is the entry point for indicatord.
package main

import (
	"github.com/zeusync/offscreen/internal/cmd"
)

func main() {
	cmd.Execute()
}
