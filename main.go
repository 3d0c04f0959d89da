package main

import "github.com/sw33tLie/appshell/cmd"

func main() {
	cmd.Execute()
}
