package main

import "github.com/tanq16/forgemods/cmd"

func main() {
	cmd.Execute()
}
