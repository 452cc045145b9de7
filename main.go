package main

import "azuread-connector/cmd"

func main() {
	cmd.Execute()
}
