package main

import "github.com/wolfiez/wallpaper/cmd"

func main() {
	cmd.Execute()
}
