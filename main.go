package main

import "github.com/samuelfneumann/modelrl/cmd"

func main() {
	cmd.Execute()
}
