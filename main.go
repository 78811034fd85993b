package main

import "github.com/rs5lab/grayplug/cmd"

func main() {
	cmd.Execute()
}
