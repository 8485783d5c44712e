/*
Package main is the entry point for the strapd CLI.

strapd is a developer utility toolkit that remembers which tools you use
and puts them first.

Usage:

	strapd [command]

Available Commands:

	run         Run a tool
	list        List available tools, most used first
	top         Show your most used tools
	search      Search tools by name and description
	usage       Manage tool usage history
	serve       Run the MCP server (stdio transport)
	config      Show or create the configuration file
	version     Show version information

Examples:

	strapd run base64-encode "hello world"
	strapd search hash
	strapd serve
*/
package main

import (
	"fmt"
	"os"

	"github.com/khanglvm/strapd/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
