package defense

import "github.com/authdefense-sim/authdefense-sim/sim"

// Hybrid composes a source-IP bucket and an account bucket.
// Check consults the IP bucket first and only reaches the account bucket if the
// IP bucket admits, so an IP denial never consumes an account token.
// Update charges both buckets; the pipeline only calls it for admitted attempts.
type Hybrid struct {
	ip      *TokenBucket
	account *TokenBucket
}

// NewHybrid creates a Hybrid policy from an IP-keyed and an account-keyed bucket.
func NewHybrid(ip, account *TokenBucket) *Hybrid {
	return &Hybrid{ip: ip, account: account}
}

func (h *Hybrid) Check(username, sourceIP string) (bool, string) {
	if ok, reason := h.ip.Check(username, sourceIP); !ok {
		return false, reason
	}
	return h.account.Check(username, sourceIP)
}

func (h *Hybrid) Update(username, sourceIP string, result sim.AttemptResult) {
	h.ip.Update(username, sourceIP, result)
	h.account.Update(username, sourceIP, result)
}
