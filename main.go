package main

import "github.com/dmora/concurrency/cmd"

func main() {
	cmd.Execute()
}
