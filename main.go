package main

import "github.com/KaramelBytes/chemviz-cli/cmd"

func main() {
	cmd.Execute()
}
