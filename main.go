package main

import "github.com/danekja/ymanager/cmd"

func main() {
	cmd.Execute()
}
