package main

import "github.com/wolfitem/ai-news/cmd"

func main() {
	cmd.Execute()
}
