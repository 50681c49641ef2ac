// Command mdbook-epub is an mdBook backend producing EPUB files.
//
// Configure it as a renderer in book.toml:
//
//	[output.epub]
//
// and mdbook build runs it with the render context on stdin. Run with
// --standalone to build a book directory without mdBook.
package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cmd := newRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
