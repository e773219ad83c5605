package main

import "crm-app/src/cli"

func main() {
	cli.Execute()
}
