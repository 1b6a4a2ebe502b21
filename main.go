package main

import "github.com/notargets/mfree/cmd"

func main() {
	cmd.Execute()
}
