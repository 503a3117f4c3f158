package main

import "labelsync/internal/cmd"

func main() {
	cmd.Execute()
}
