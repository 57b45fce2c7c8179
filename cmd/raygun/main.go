// raygun is a terminal client for the ray debugging protocol: it ingests
// debug payloads over HTTP and renders them as a live navigable timeline.
package main

import (
	"os"

	"github.com/yetidevworks/raygun/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
