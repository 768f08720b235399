// Package main is the entry point for cxs, the Codex account switcher.
package main

import "github.com/j-veylop/codex-switcher-tui/internal/cli"

func main() {
	cli.Execute()
}
