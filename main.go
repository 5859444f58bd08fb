package main

import "github.com/solsentry/solsentry/cmd"

func main() {
	cmd.Execute()
}
