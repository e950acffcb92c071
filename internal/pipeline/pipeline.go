package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/avast/retry-go"
	"github.com/skstore/creditbot/internal/config"
	"github.com/skstore/creditbot/internal/payment"
	"github.com/skstore/creditbot/internal/storage"
)

// Message is one inbound chat message, with text already extracted by the
// platform adapter.
type Message struct {
	// ID is the platform-wide unique identifier (chatID:messageID).
	ID string
	// ChannelID is the chat the message was posted in.
	ChannelID int64
	// MessageID is the platform-local ID, used for the channel reply.
	MessageID int
	// AuthorID is the poster (the payment notifier, not the buyer).
	AuthorID int64
	// Text is the newline-joined, trimmed message content.
	Text string
}

// Notifier delivers best-effort notifications after a credit commits.
type Notifier interface {
	SendDirectMessage(ctx context.Context, userID int64, text string) error
	ReplyInChannel(ctx context.Context, channelID int64, replyTo int, text string) error
}

// Outcome is the terminal state of processing one message.
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeDeduplicated
	OutcomeCredited
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDeduplicated:
		return "deduplicated"
	case OutcomeCredited:
		return "credited"
	default:
		return "skipped"
	}
}

const persistAttempts = 3

// Pipeline turns confirmed sales messages into credit grants.
type Pipeline struct {
	cfg        *config.Config
	store      *storage.Storage
	classifier *payment.Classifier
	notifier   Notifier
	log        *slog.Logger
}

// New creates a pipeline; the classifier is built from the configured
// vocabulary.
func New(cfg *config.Config, store *storage.Storage, notifier Notifier, log *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		store:      store,
		classifier: payment.NewClassifier(cfg.CompletedWords, cfg.PendingWords),
		notifier:   notifier,
		log:        log,
	}
}

// HandleMessage runs one message through the pipeline. The only error it
// returns is a persistence failure after the bounded retry is exhausted;
// everything else resolves locally to a skip or a dedup.
func (p *Pipeline) HandleMessage(ctx context.Context, msg Message) (Outcome, error) {
	if msg.ChannelID != p.cfg.SalesChatID {
		return OutcomeSkipped, nil
	}

	p.log.Info("sales message received",
		"message_id", msg.ID,
		"author_id", msg.AuthorID,
	)

	processed, err := p.store.HasProcessed(msg.ID)
	if err != nil {
		return OutcomeSkipped, fmt.Errorf("check processed: %w", err)
	}
	if processed {
		p.log.Info("message already processed", "message_id", msg.ID)
		return OutcomeDeduplicated, nil
	}

	cls := p.classifier.Classify(msg.Text)
	if cls.Status != payment.StatusCompleted {
		p.log.Info("payment not completed yet",
			"message_id", msg.ID,
			"status", cls.Status.String(),
		)
		return OutcomeSkipped, nil
	}

	if cls.BuyerID == "" || cls.RawAmount == "" {
		p.log.Warn("could not extract buyer ID or cart total",
			"message_id", msg.ID,
		)
		return OutcomeSkipped, nil
	}

	amount, raw, err := payment.ParseAmount(cls.RawAmount)
	if err != nil {
		p.log.Warn("unparsable amount",
			"message_id", msg.ID,
			"raw", raw,
			"error", err,
		)
		return OutcomeSkipped, nil
	}

	credits := payment.CreditsFor(amount)

	// Commit ledger credit and idempotency mark as one transaction. A
	// durable-write failure must not be acknowledged as success, so after
	// the bounded retry it surfaces to the caller.
	var newBalance int64
	var applied bool
	err = retry.Do(
		func() error {
			var err error
			newBalance, applied, err = p.store.CreditForMessage(msg.ID, cls.BuyerID, credits, raw)
			return err
		},
		retry.Attempts(persistAttempts),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return OutcomeSkipped, fmt.Errorf("persist credit: %w", err)
	}
	if !applied {
		p.log.Info("message already processed", "message_id", msg.ID)
		return OutcomeDeduplicated, nil
	}

	p.log.Info("credits granted",
		"buyer_id", cls.BuyerID,
		"raw_amount", raw,
		"amount", amount.String(),
		"credits", credits,
		"balance", newBalance,
	)

	p.notify(ctx, msg, cls.BuyerID, credits, newBalance)

	return OutcomeCredited, nil
}

// notify sends the buyer DM and the channel confirmation. Both are
// best-effort: the credit is already committed and never rolls back.
func (p *Pipeline) notify(ctx context.Context, msg Message, buyerID string, credits, balance int64) {
	buyerNum, err := strconv.ParseInt(buyerID, 10, 64)
	if err != nil {
		p.log.Warn("buyer ID is not a valid user ID", "buyer_id", buyerID)
		return
	}

	dm := fmt.Sprintf(
		"🎉 <b>Parabéns! Você ganhou créditos!</b>\n\n"+
			"💰 <b>+%d créditos</b> adicionados!\n"+
			"🏦 <b>Saldo atual:</b> %d créditos\n\n"+
			"🛍️ Use /loja para ver as recompensas disponíveis\n"+
			"🎁 Use /resgatar para trocar seus créditos\n"+
			"💳 Use /saldo para consultar seu saldo",
		credits, balance,
	)
	if err := p.notifier.SendDirectMessage(ctx, buyerNum, dm); err != nil {
		p.log.Warn("send buyer DM", "buyer_id", buyerID, "error", err)
	}

	reply := fmt.Sprintf(
		"✅ <b>Créditos processados!</b>\n"+
			"👤 <a href='tg://user?id=%d'>Comprador %s</a> ganhou <b>%d créditos</b>\n"+
			"💰 Saldo total: <b>%d créditos</b>",
		buyerNum, buyerID, credits, balance,
	)
	if err := p.notifier.ReplyInChannel(ctx, msg.ChannelID, msg.MessageID, reply); err != nil {
		p.log.Error("send channel confirmation", "message_id", msg.ID, "error", err)
	}
}
