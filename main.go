package main

import "github.com/jsphweid/noteblock/cmd"

func main() {
	cmd.Execute()
}
