package main

import "github.com/viveksahu26/bomimport/cmd"

func main() {
	cmd.Execute()
}
