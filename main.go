package main

import "github.com/llehouerou/duet/cmd"

func main() {
	cmd.Execute()
}
