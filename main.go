package main

import "github.com/The-synnapse-Project/front-end-sub000/cmd"

func main() {
	cmd.Execute()
}
