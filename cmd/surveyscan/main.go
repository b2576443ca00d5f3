package main

import "github.com/MeKo-Tech/surveyscan/cmd/surveyscan/cmd"

func main() {
	cmd.Execute()
}
