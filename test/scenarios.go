// Package test holds integration scenarios run against a live remote
// console by cmd/testrunner.
package test

import (
	"fmt"
	"strings"
	"time"

	"github.com/lawnchairsociety/gameconsole/internal/testclient"
)

// Verbose controls whether detailed logging is shown during tests
var Verbose = false

// replyTimeout bounds how long a scenario waits for one reply.
const replyTimeout = 2 * time.Second

// TestResult represents the result of a test
type TestResult struct {
	Name    string
	Passed  bool
	Message string
}

// Target is the console under test.
type Target struct {
	Addr     string
	Password string
}

// Scenario is one named check against a target.
type Scenario struct {
	Name string
	Run  func(t Target) (passed bool, message string)
}

// logAction logs a test action when verbose mode is enabled
func logAction(testName, action string) {
	if Verbose {
		fmt.Printf("  [%s] %s\n", testName, action)
	}
}

// logResult logs an expected vs actual result when verbose mode is enabled
func logResult(testName string, success bool, detail string) {
	if Verbose {
		status := "OK"
		if !success {
			status = "FAIL"
		}
		fmt.Printf("  [%s] %s: %s\n", testName, status, detail)
	}
}

// Scenarios returns every scenario in run order.
func Scenarios() []Scenario {
	return []Scenario{
		{"Login", testLogin},
		{"Wrong Password", testWrongPassword},
		{"Help Lists Commands", testHelp},
		{"Help For One Command", testHelpCommand},
		{"Chained Commands", testChain},
		{"Escaped Delimiter", testEscapedDelimiter},
		{"Quoted Argument", testQuoted},
		{"Unknown Command", testUnknownCommand},
		{"Wrong Argument Count", testArity},
		{"Bad Argument", testBadArgument},
		{"Players", testPlayers},
		{"Feature Switch", testFeatureSwitch},
		{"Quit", testQuit},
	}
}

// RunAllTests runs every scenario against t in order.
func RunAllTests(t Target) []TestResult {
	scenarios := Scenarios()
	results := make([]TestResult, 0, len(scenarios))
	for _, s := range scenarios {
		if Verbose {
			fmt.Printf("Running: %s\n", s.Name)
		}
		passed, message := s.Run(t)
		results = append(results, TestResult{Name: s.Name, Passed: passed, Message: message})
	}
	return results
}

// PrintResults prints a summary of results.
func PrintResults(results []TestResult) {
	passed := 0
	for _, r := range results {
		status := "PASS"
		if r.Passed {
			passed++
		} else {
			status = "FAIL"
		}
		fmt.Printf("[%s] %s: %s\n", status, r.Name, r.Message)
	}
	fmt.Printf("\n%d/%d passed\n", passed, len(results))
}

// session opens a logged-in client for one scenario.
func session(t Target, name string) (*testclient.TestClient, string) {
	client, err := testclient.NewTestClient(name, t.Addr, t.Password)
	if err != nil {
		return nil, fmt.Sprintf("Connection failed: %v", err)
	}
	return client, ""
}

// expect sends line and waits for every text to appear, in any order.
func expect(client *testclient.TestClient, testName, line string, texts ...string) (bool, string) {
	client.ClearMessages()
	logAction(testName, "Sending "+line)
	if err := client.SendCommand(line); err != nil {
		return false, fmt.Sprintf("Send failed: %v", err)
	}
	for _, text := range texts {
		ok := client.WaitForMessage(text, replyTimeout)
		logResult(testName, ok, "Saw "+text)
		if !ok {
			return false, fmt.Sprintf("%q: missing %q, got %q", line, text, strings.Join(client.GetMessages(), " | "))
		}
	}
	return true, ""
}
