package main

import "github.com/MatheusDSantossi/data-analyses-automate/cmd"

func main() {
	cmd.Execute()
}
