package main

import "go.pilab.hu/tower/cmd/towerctl/cmd"

func main() {
	cmd.Execute()
}
