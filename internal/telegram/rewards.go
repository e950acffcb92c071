package telegram

// Reward is one redeemable shop entry. The set is closed: redemption
// callbacks resolve against this table and unknown keys are rejected
// instead of falling through on a string.
type Reward struct {
	Key   string
	Emoji string
	Label string
	Cost  int64
}

var rewards = []Reward{
	{Key: "desconto", Emoji: "💸", Label: "10% de desconto", Cost: 2},
	{Key: "conta", Emoji: "🎮", Label: "1 conta grátis", Cost: 6},
}

func rewardByKey(key string) (Reward, bool) {
	for _, r := range rewards {
		if r.Key == key {
			return r, true
		}
	}
	return Reward{}, false
}
