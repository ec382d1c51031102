package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "serve":
		if err := runServe(args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("lisportal version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`lisportal - demo portal for hxsearch elements

Usage:
  lisportal <command> [arguments]

Commands:
  serve [config]   Start the portal (config is an optional TOML file)
  version          Print version
  help             Show this help

Environment:
  .env in the working directory is loaded when present.
  LISPORTAL_ADDR, LISPORTAL_SIGNING_KEY, LISPORTAL_PAGE_SIZE,
  LISPORTAL_MAX_INSTANCES, LISPORTAL_SHUTDOWN_SECONDS,
  LISPORTAL_LOG_LEVEL and LISPORTAL_LOG_FILE override the config file.

Examples:
  lisportal serve
  lisportal serve lisportal.toml
  LISPORTAL_ADDR=:9000 lisportal serve`)
}
