/*
Copyright © 2025 MrKleeblatt
*/
package main

import "github.com/MrKleeblatt/Serial/cmd"

func main() {
	cmd.Execute()
}
