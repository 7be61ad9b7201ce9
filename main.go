package main

import "canarytk/cmd"

func main() {
	cmd.Execute()
}
