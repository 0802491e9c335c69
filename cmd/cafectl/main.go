// Command cafectl is the terminal back-office console.
package main

import "github.com/agosto18/cafeauth/cmd/cafectl/cmd"

func main() {
	cmd.Execute()
}
