package main

import "github.com/frahmantamala/stagiaire-management/cmd"

func main() {
	cmd.Execute()
}
