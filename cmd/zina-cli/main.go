package main

import "github.com/nfrund/zina/cmd/zina-cli/cmd"

func main() {
	cmd.Execute()
}
