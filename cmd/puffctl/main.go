package main

import "github.com/puffbuddy/backend/internal/cli/cmd"

func main() {
	cmd.Execute()
}
