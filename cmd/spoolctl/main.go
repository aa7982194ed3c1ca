package main

import "filament-inventory-api/cmd/spoolctl/cmd"

func main() {
	cmd.Execute()
}
