/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package main

import "github.com/mautops/checksheet-gin/cmd"

func main() {
	cmd.Execute()
}
