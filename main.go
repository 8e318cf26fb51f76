package main

import "github.com/jmehdipour/paynotify/cmd"

func main() {
	cmd.Execute()
}
