package main

import "github.com/mediqhq/mediq_backend/cmd"

func main() {
	cmd.Execute()
}
