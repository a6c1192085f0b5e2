package main

import "pagethread/cmd/pagethread/cmd"

func main() {
	cmd.Execute()
}
