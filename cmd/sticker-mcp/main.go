package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/sticker-slicer-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("sticker-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("sticker-mcp - MCP server that cuts sticker sheets into stickers")
			fmt.Println()
			fmt.Println("Usage: sticker-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  STICKER_MCP_LOG_LEVEL=debug      Enable debug logging")
			fmt.Println("  STICKER_MCP_OUTPUT_DIR=<dir>     Where archives are written (default: system temp dir)")
			fmt.Println("  STICKER_MCP_PREVIEW_LIMIT=<n>    Stickers shown by sticker_preview (default: 8)")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := server.ConfigFromEnv()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if Version != "dev" {
		server.Version = Version
	}
	if cfg.Debug {
		log.Printf("Sticker MCP Server v%s (built %s, commit %s), output dir %s",
			Version, BuildTime, GitCommit, cfg.OutputDir)
	}

	srv := server.NewWithConfig(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
