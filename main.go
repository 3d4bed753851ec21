package main

import "github.com/palengkelab/agriprice-cli/cmd"

func main() {
	cmd.Execute()
}
