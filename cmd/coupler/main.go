package main

import "github.com/esmlab/coupler/cmd/coupler/cmd"

func main() {
	cmd.Execute()
}
