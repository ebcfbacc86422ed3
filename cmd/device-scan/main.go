// Command device-scan walks the sample bucket and reports malfunctioning devices.
package main

import "github.com/fedexist/empatica-challenge/cmd/device-scan/cmd"

func main() {
	cmd.Execute()
}
