package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lawnchairsociety/gameconsole/test"
)

func main() {
	serverAddr := flag.String("addr", "127.0.0.1:4100", "Remote console telnet address")
	password := flag.String("password", os.Getenv("CONSOLE_PASSWORD"), "Remote console password (default: $CONSOLE_PASSWORD)")
	verbose := flag.Bool("v", false, "Verbose output - show detailed actions for each test")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "Error: -password or CONSOLE_PASSWORD is required")
		os.Exit(2)
	}

	// Set verbose mode
	test.Verbose = *verbose

	fmt.Printf("Running integration tests against %s\n", *serverAddr)
	fmt.Println("Make sure the game console is running with the remote console enabled!")
	if *verbose {
		fmt.Println("Verbose mode enabled - showing detailed test actions")
	}
	fmt.Println()

	results := test.RunAllTests(test.Target{Addr: *serverAddr, Password: *password})
	test.PrintResults(results)

	// Exit with error code if any tests failed
	for _, result := range results {
		if !result.Passed {
			os.Exit(1)
		}
	}
}
