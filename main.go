package main

import "github.com/echoshade800/spoon-calorie-v2-sub000/cmd/spoon"

func main() {
	spoon.Execute()
}
