// Command device-check evaluates a single device folder and prints its verdict.
package main

import "github.com/fedexist/empatica-challenge/cmd/device-check/cmd"

func main() {
	cmd.Execute()
}
