/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/qoolink/server/cmd"

func main() {
	cmd.Execute()
}
