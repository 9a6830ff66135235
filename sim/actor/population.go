package actor

import (
	"fmt"

	"github.com/authdefense-sim/authdefense-sim/sim"
)

// The primary target account attacked in every scenario.
const (
	VictimUsername = "victim"
	VictimPassword = "secret_password"
)

// CommonPasswords is the brute-force dictionary. The victim's real password is
// last so an undefended brute forcer eventually finds it.
var CommonPasswords = []string{
	"password", "123456", "12345678", "qwerty", "abc123",
	"monkey", "1234567", "letmein", "trustno1", "dragon",
	"baseball", "iloveyou", "master", "sunshine", "ashley",
	"bailey", "shadow", "123123", "654321", "superman",
	VictimPassword,
}

// StuffingGuesses are the wrong passwords a credential stuffer falls back to.
var StuffingGuesses = []string{
	"password", "123456", "12345678", "qwerty", "abc123",
	"monkey", "letmein", "dragon", "sunshine",
}

const (
	bruteForceRate  = 2.0
	botCount        = 20
	botPasswords    = 5
	botRate         = 0.1
	stuffingRate    = 1.0
	stuffingLeak    = 0.15
	stuffingTargets = 50
	sharedIPUsers   = 15
	sharedIP        = "192.168.1.100"
)

// UserCredentials returns the username and password of normal user i.
func UserCredentials(i int) (username, password string) {
	return fmt.Sprintf("user%d", i), fmt.Sprintf("pass%d", i)
}

// BaselineAttackers returns a fast single-IP brute forcer plus a slow botnet,
// all against the victim account.
func BaselineAttackers() []sim.Actor {
	actors := []sim.Actor{
		NewBruteForcer("brute_force", VictimUsername, "10.0.0.1", CommonPasswords, bruteForceRate),
	}
	for _, bot := range NewBotnet(botCount, VictimUsername, CommonPasswords[:botPasswords], botRate) {
		actors = append(actors, bot)
	}
	return actors
}

// CredentialStuffingAttackers returns a single stuffer replaying a leak over
// the standard user population and the victim.
func CredentialStuffingAttackers(rng *sim.PartitionedRNG) []sim.Actor {
	pairs := BuildLeakedPairs(rng.ForSubsystem(sim.SubsystemCredentialStuffing), LeakModel{
		NumUsers:        stuffingTargets,
		LeakProbability: stuffingLeak,
		GuessPasswords:  StuffingGuesses,
		Target:          VictimUsername,
		TargetPassword:  VictimPassword,
	})
	return []sim.Actor{NewCredentialStuffer("cred_stuffer", pairs, stuffingRate)}
}

// NormalUsers creates n users. With shared set, the first 15 sit behind one
// address (an office or home NAT); everyone else has a unique address.
func NormalUsers(rng *sim.PartitionedRNG, n int, shared bool, behavior UserBehavior) []*NormalUser {
	users := make([]*NormalUser, 0, n)
	for i := 0; i < n; i++ {
		username, password := UserCredentials(i)
		ip := fmt.Sprintf("192.168.%d.%d", i/256, i%256)
		if shared && i < sharedIPUsers {
			ip = sharedIP
		}
		users = append(users, NewNormalUser(
			fmt.Sprintf("normal_user_%d", i),
			username, password, ip,
			behavior,
			rng.ForSubsystem(sim.SubsystemUser(i)),
		))
	}
	return users
}
