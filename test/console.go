package test

import (
	"fmt"
	"time"

	"github.com/lawnchairsociety/gameconsole/internal/testclient"
)

func testLogin(t Target) (bool, string) {
	const testName = "Login"

	client, msg := session(t, testName)
	if client == nil {
		return false, msg
	}
	defer client.Close()

	if ok, msg := expect(client, testName, "echo ready", "ready"); !ok {
		return false, msg
	}
	return true, "Logged in and ran a command"
}

func testWrongPassword(t Target) (bool, string) {
	const testName = "Wrong Password"

	client, err := testclient.NewTestClientRaw(t.Addr)
	if err != nil {
		return false, fmt.Sprintf("Connection failed: %v", err)
	}
	defer client.Close()

	if ok, msg := expect(client, testName, t.Password+"-wrong", "Wrong password."); !ok {
		return false, msg
	}
	if ok, msg := expect(client, testName, t.Password, testclient.Banner); !ok {
		return false, msg
	}
	return true, "Wrong password rejected, retry accepted"
}

func testHelp(t Target) (bool, string) {
	const testName = "Help Lists Commands"

	client, msg := session(t, testName)
	if client == nil {
		return false, msg
	}
	defer client.Close()

	if ok, msg := expect(client, testName, "help", "Commands:", "echo <text...>", "players", "teleport"); !ok {
		return false, msg
	}
	return true, "Help lists builtin commands"
}

func testHelpCommand(t Target) (bool, string) {
	const testName = "Help For One Command"

	client, msg := session(t, testName)
	if client == nil {
		return false, msg
	}
	defer client.Close()

	if ok, msg := expect(client, testName, "? tp", "Usage: teleport <player> <x> <y> [z]", "Aliases: tp"); !ok {
		return false, msg
	}
	return true, "Help resolves aliases and shows usage"
}

func testChain(t Target) (bool, string) {
	const testName = "Chained Commands"

	client, msg := session(t, testName)
	if client == nil {
		return false, msg
	}
	defer client.Close()

	if ok, msg := expect(client, testName, "echo first; nope; echo third",
		"first", `unknown command "nope"`, "third"); !ok {
		return false, msg
	}
	return true, "Every sub-command ran despite a failure"
}

func testEscapedDelimiter(t Target) (bool, string) {
	const testName = "Escaped Delimiter"

	client, msg := session(t, testName)
	if client == nil {
		return false, msg
	}
	defer client.Close()

	if ok, msg := expect(client, testName, `echo left\;right`, "left;right"); !ok {
		return false, msg
	}
	return true, "Escaped delimiter kept in the argument"
}

func testQuoted(t Target) (bool, string) {
	const testName = "Quoted Argument"

	client, msg := session(t, testName)
	if client == nil {
		return false, msg
	}
	defer client.Close()

	if ok, msg := expect(client, testName, `help "no such topic"`, `no help for "no such topic"`); !ok {
		return false, msg
	}
	return true, "Quoted text reached the handler as one argument"
}

func testUnknownCommand(t Target) (bool, string) {
	const testName = "Unknown Command"

	client, msg := session(t, testName)
	if client == nil {
		return false, msg
	}
	defer client.Close()

	if ok, msg := expect(client, testName, "ehco hi", `Error: unknown command "ehco"`, "echo"); !ok {
		return false, msg
	}
	return true, "Unknown command reported with a suggestion"
}

func testArity(t Target) (bool, string) {
	const testName = "Wrong Argument Count"

	client, msg := session(t, testName)
	if client == nil {
		return false, msg
	}
	defer client.Close()

	if ok, msg := expect(client, testName, "teleport", "got 0", "usage: teleport"); !ok {
		return false, msg
	}
	return true, "Missing arguments reported with usage"
}

func testBadArgument(t Target) (bool, string) {
	const testName = "Bad Argument"

	client, msg := session(t, testName)
	if client == nil {
		return false, msg
	}
	defer client.Close()

	if ok, msg := expect(client, testName, "history lots", "history: argument 1 (count)"); !ok {
		return false, msg
	}
	return true, "Uncoercible argument reported"
}

func testPlayers(t Target) (bool, string) {
	const testName = "Players"

	client, msg := session(t, testName)
	if client == nil {
		return false, msg
	}
	defer client.Close()

	client.ClearMessages()
	client.SendCommand("who")
	if _, ok := client.WaitForAnyMessage([]string{"Total:", "No players online."}, replyTimeout); !ok {
		return false, "players listing missing"
	}
	return true, "Player listing returned"
}

func testFeatureSwitch(t Target) (bool, string) {
	const testName = "Feature Switch"

	client, msg := session(t, testName)
	if client == nil {
		return false, msg
	}
	defer client.Close()

	if ok, msg := expect(client, testName, "nosupport yes", "nosupport: on"); !ok {
		return false, msg
	}
	if ok, msg := expect(client, testName, "nosupport 0", "nosupport: off"); !ok {
		return false, msg
	}
	return true, "Feature switched on and off"
}

func testQuit(t Target) (bool, string) {
	const testName = "Quit"

	client, msg := session(t, testName)
	if client == nil {
		return false, msg
	}
	defer client.Close()

	if ok, msg := expect(client, testName, "quit", "Goodbye."); !ok {
		return false, msg
	}
	if !client.WaitForClose(time.Second) {
		return false, "Connection still open after quit"
	}
	return true, "Session closed on quit"
}
