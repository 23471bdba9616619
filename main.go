package main

import "folklore-pipeline/cmd"

func main() {
	cmd.Execute()
}
