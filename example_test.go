package epub_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/Laisky/zap"

	epub "github.com/simp-lee/mdbook-epub"
	"github.com/simp-lee/mdbook-epub/book"
	"github.com/simp-lee/mdbook-epub/verify"
)

func ExampleGenerate() {
	// mdbook build pipes the render context to the backend's stdin.
	rc, err := book.ParseRenderContext(os.Stdin)
	if err != nil {
		log.Fatal(err)
	}

	path, err := epub.Generate(context.Background(), rc, epub.WithLogger(zap.NewExample()))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("written to", path)
}

func ExampleGenerate_standalone() {
	md, err := book.Load("testdata/dummy")
	if err != nil {
		log.Fatal(err)
	}
	rc := md.RenderContext(os.TempDir())

	path, err := epub.Generate(context.Background(), rc)
	if err != nil {
		log.Fatal(err)
	}

	report, err := verify.Check(path)
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range report.Problems {
		fmt.Println(p)
	}
}
