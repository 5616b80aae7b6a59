// Package main is the production entry point for the AmpViz audio
// visualizer.
//
// AmpViz renders audio-reactive effects (spectrum bars, oscilloscope,
// particle field, level meter) from a local audio file or a built-in demo
// signal:
// - Event-driven communication (no callbacks)
// - Dependency injection for testability
// - MVP pattern for UI decoupling
//
// Build:
//
//	go build -o build/ampviz ./cmd
//
// Run:
//
//	./build/ampviz -file track.mp3
//	./build/ampviz -demo
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/app"
)

func main() {
	var (
		filePath = flag.String("file", "", "audio file to visualize (wav, mp3, ogg)")
		demo     = flag.Bool("demo", false, "use the built-in demo signal")
		version  = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Println(app.GetVersionInfo().FullString())
		return
	}

	config := app.DefaultConfig()
	config.SourcePath = *filePath
	config.DemoMode = *demo

	application, err := app.NewApplication(config)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Ensure a graceful shutdown
	defer application.Shutdown()

	// Run application (blocks until the window is closed)
	application.Run()
}
