package main

import "github.com/frahmantamala/property-hub/cmd"

func main() {
	cmd.Execute()
}
