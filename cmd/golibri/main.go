// Command golibri is the CLI entry point for the EPUB read/write/extract/
// assemble/manipulate engine in internal/.
package main

import "golibri-studio/cmd/golibri/commands"

func main() {
	commands.Execute()
}
