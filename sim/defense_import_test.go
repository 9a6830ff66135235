package sim_test

// Blank import triggers sim/defense's init(), which registers NewDefensePolicyFunc.
// This allows package sim's internal test files to build real defense policies
// without directly importing sim/defense (which would create an import cycle).
import _ "github.com/authdefense-sim/authdefense-sim/sim/defense"
