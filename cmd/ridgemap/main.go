package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/ridgemap/internal/config"
	"github.com/ironsheep/ridgemap/internal/pipeline"
	"github.com/ironsheep/ridgemap/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	command, args := "serve", []string(nil)
	if len(os.Args) > 1 {
		command, args = os.Args[1], os.Args[2:]
	}

	switch command {
	case "--version", "-v", "version":
		fmt.Printf("ridgemap %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		printUsage()
		return
	}

	// Configure logging to stderr (stdout is for MCP protocol and results)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	debug := os.Getenv("RIDGEMAP_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("ridgemap v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	var err error
	switch command {
	case "serve":
		if !debug {
			pipeline.SetLogger(nil)
		}
		err = runServe()
	case "detect":
		err = runDetect(args, os.Stdout)
	case "download":
		err = runDownload(args, os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(2)
	}
	if code := exitStatus(err); code != 0 {
		log.Printf("%s: %v", command, err)
		os.Exit(code)
	}
}

// exitStatus maps a command error to the process exit status. A help request
// from a command's flags is not a failure.
func exitStatus(err error) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return 0
	}
	return 1
}

func runServe() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", config.EnvConfigPath, err)
	}
	srv := server.NewWithConfig(cfg)
	if err := srv.Run(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func printUsage() {
	fmt.Println("ridgemap - ridge and vesselness detection for satellite rasters")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ridgemap [serve]                 Run the MCP server on stdin/stdout")
	fmt.Println("  ridgemap detect [flags] <band>   Detect ridges and render a composite")
	fmt.Println("  ridgemap download [flags] [dir]  Fetch the example Sentinel-2 tile bands")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Run 'ridgemap detect -h' or 'ridgemap download -h' for command flags.")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  RIDGEMAP_LOG_LEVEL=debug    Enable debug logging")
	fmt.Printf("  %s=<file.json>    Pipeline defaults for detect and serve\n", config.EnvConfigPath)
	fmt.Println()
	fmt.Println("Band files must be PNG, JPEG, GIF, BMP or TIFF. Downloaded JPEG 2000")
	fmt.Println("bands need converting first, e.g. gdal_translate B08.jp2 B08.tif.")
}
