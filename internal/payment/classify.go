package payment

import (
	"regexp"
	"strings"
)

// Status is the classification of a sales-channel message.
type Status int

const (
	StatusUnrecognized Status = iota
	StatusPending
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusPending:
		return "pending"
	default:
		return "unrecognized"
	}
}

// Classification is the result of inspecting one message text.
// BuyerID and RawAmount are only populated for StatusCompleted, and may
// still be empty if the labeled fields were missing from the message.
type Classification struct {
	Status    Status
	BuyerID   string
	RawAmount string
}

// Labeled fields posted by the payment notifier. The labels are part of its
// fixed message format; only the status vocabulary is configurable.
var (
	buyerRegex  = regexp.MustCompile(`(?i)id\s*do\s*comprador[:\s*]*\**\s*(\d+)`)
	amountRegex = regexp.MustCompile(`(?i)valor\s*total\s*do\s*carrinho[:\s*]*\**\s*([\d.,R$\s]+)`)
)

// Classifier matches message text against configured status vocabulary.
type Classifier struct {
	completed *regexp.Regexp
	pending   *regexp.Regexp
}

// NewClassifier builds a classifier from completion and pending word lists.
// Words are matched as case-insensitive substrings, so "paga" also catches
// "pagamento" the way the notifier writes its status lines.
func NewClassifier(completedWords, pendingWords []string) *Classifier {
	return &Classifier{
		completed: wordsRegex(completedWords),
		pending:   wordsRegex(pendingWords),
	}
}

func wordsRegex(words []string) *regexp.Regexp {
	if len(words) == 0 {
		// Matches nothing
		return regexp.MustCompile(`\z.`)
	}

	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	return regexp.MustCompile(`(?i)(` + strings.Join(quoted, "|") + `)`)
}

// Classify inspects the concatenated text of one message. A message counts
// as completed only when a completion word matches and no pending word does;
// the payment notifier posts multiple status messages per transaction and a
// pending marker means the final one has not arrived yet.
func (c *Classifier) Classify(text string) Classification {
	completed := c.completed.MatchString(text)
	pending := c.pending.MatchString(text)

	if !completed || pending {
		if pending {
			return Classification{Status: StatusPending}
		}
		return Classification{Status: StatusUnrecognized}
	}

	cls := Classification{Status: StatusCompleted}

	if m := buyerRegex.FindStringSubmatch(text); len(m) > 1 {
		cls.BuyerID = m[1]
	}
	if m := amountRegex.FindStringSubmatch(text); len(m) > 1 {
		cls.RawAmount = strings.TrimSpace(m[1])
	}

	return cls
}
