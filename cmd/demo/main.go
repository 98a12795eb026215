// Command demo runs a colorized, self-contained demonstration of the
// faultline building blocks: classification, the invocation wrapper with
// backoff, the toast store, and the render boundary.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/dotcommander/faultline/internal/demo"
)

func main() {
	var fast bool
	flag.BoolVar(&fast, "fast", false, "Skip pauses between steps")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	demo.NewRunner(os.Stdout, fast).Run()
}
