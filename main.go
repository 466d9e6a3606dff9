package main

import "github.com/nsxzhou1114/social-api/cmd"

func main() {
	cmd.Execute()
}
