// The cdrasim command runs carbon dioxide removal assembly simulations.
package main

import "github.com/orbitlab/cdrasim/cdrasim/cmd"

func main() {
	cmd.Execute()
}
