package main

import "facility-matcher/cmd"

func main() {
	cmd.Execute()
}
