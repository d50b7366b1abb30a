package main

import "github.com/proxyfig/proxyfig/cmd"

func main() {
	cmd.Execute()
}
