// register.go wires the sim/defense constructor into the sim package's
// registration variable (NewDefensePolicyFunc). This init() runs when any
// package imports sim/defense, breaking the import cycle between sim/
// (interface owner) and sim/defense/ (implementation). Test code in package sim
// uses defense_import_test.go for the blank import.
package defense

import "github.com/authdefense-sim/authdefense-sim/sim"

func init() {
	sim.NewDefensePolicyFunc = New
}
