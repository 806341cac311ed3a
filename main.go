package main

import "segprep/cmd"

func main() {
	cmd.Execute()
}
