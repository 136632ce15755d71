package main

import "photo-index/cmd"

func main() {
	cmd.Execute()
}
