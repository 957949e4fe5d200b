package main

import "github.com/will-rowe/kwindex/cmd"

func main() {
	cmd.Execute()
}
