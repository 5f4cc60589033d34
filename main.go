package main

import "github.com/biolabs/plateforge/cmd"

func main() {
	cmd.Execute()
}
