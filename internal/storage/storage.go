package storage

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidAmount = errors.New("amount must be a positive integer")
	ErrInsufficient  = errors.New("insufficient balance")
)

// Storage handles all database operations. The ledger and the processed
// message set share one SQLite file so a credit and its idempotency mark
// commit in a single transaction.
type Storage struct {
	db *sql.DB
}

// New creates a new Storage instance and initializes the database
func New(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	// Single writer: concurrent credits for the same user serialize here.
	db.SetMaxOpenConns(1)

	s := &Storage{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS balances (
			user_id TEXT PRIMARY KEY,
			balance INTEGER NOT NULL CHECK (balance >= 0)
		)`,

		`CREATE TABLE IF NOT EXISTS processed_messages (
			message_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			credits INTEGER NOT NULL,
			raw_amount TEXT NOT NULL,
			processed_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_processed_user_id ON processed_messages(user_id)`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}

	return nil
}

// --- Ledger ---

// GetBalance returns the user's credit balance, 0 if the user has no entry.
func (s *Storage) GetBalance(userID string) (int64, error) {
	var balance int64
	err := s.db.QueryRow(
		"SELECT balance FROM balances WHERE user_id = ?",
		userID,
	).Scan(&balance)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	return balance, err
}

// Credit adds a positive amount of credits to a user and returns the new
// balance. Used by the manual admin grant; automatic grants go through
// CreditForMessage.
func (s *Storage) Credit(userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	newBalance, err := creditTx(tx, userID, amount)
	if err != nil {
		return 0, err
	}

	return newBalance, tx.Commit()
}

// Debit removes credits from a user's balance and returns the new balance.
// Fails with ErrInsufficient rather than letting a balance go negative.
func (s *Storage) Debit(userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var balance int64
	err = tx.QueryRow(
		"SELECT balance FROM balances WHERE user_id = ?",
		userID,
	).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, ErrInsufficient
	}
	if err != nil {
		return 0, err
	}
	if balance < amount {
		return balance, ErrInsufficient
	}

	newBalance := balance - amount
	if _, err := tx.Exec(
		"UPDATE balances SET balance = ? WHERE user_id = ?",
		newBalance, userID,
	); err != nil {
		return 0, err
	}

	return newBalance, tx.Commit()
}

// creditTx upserts a balance inside an open transaction.
func creditTx(tx *sql.Tx, userID string, amount int64) (int64, error) {
	_, err := tx.Exec(
		`INSERT INTO balances (user_id, balance) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET balance = balance + excluded.balance`,
		userID, amount,
	)
	if err != nil {
		return 0, err
	}

	var balance int64
	err = tx.QueryRow(
		"SELECT balance FROM balances WHERE user_id = ?",
		userID,
	).Scan(&balance)
	return balance, err
}

// --- Processed messages ---

// HasProcessed reports whether a message ID already produced a credit.
func (s *Storage) HasProcessed(messageID string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		"SELECT 1 FROM processed_messages WHERE message_id = ?",
		messageID,
	).Scan(&one)

	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// CreditForMessage applies a credit grant attributed to a message ID. The
// processed-message insert and the balance upsert commit in one transaction,
// so a crash can never leave the credit applied without its idempotency mark
// (or the reverse). Returns the balance after the call and whether this call
// applied the grant; a replayed message ID returns applied=false and leaves
// the ledger untouched.
func (s *Storage) CreditForMessage(messageID, userID string, credits int64, rawAmount string) (int64, bool, error) {
	if credits <= 0 {
		return 0, false, ErrInvalidAmount
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT OR IGNORE INTO processed_messages (message_id, user_id, credits, raw_amount, processed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		messageID, userID, credits, rawAmount, time.Now().Unix(),
	)
	if err != nil {
		return 0, false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	if rows == 0 {
		// Already processed: report the current balance unchanged.
		var balance int64
		err := tx.QueryRow(
			"SELECT balance FROM balances WHERE user_id = ?",
			userID,
		).Scan(&balance)
		if err != nil && err != sql.ErrNoRows {
			return 0, false, err
		}
		return balance, false, nil
	}

	newBalance, err := creditTx(tx, userID, credits)
	if err != nil {
		return 0, false, err
	}

	return newBalance, true, tx.Commit()
}

// GetProcessedMessage returns the record of an applied grant.
func (s *Storage) GetProcessedMessage(messageID string) (*ProcessedMessage, error) {
	var pm ProcessedMessage
	var processedAt int64

	err := s.db.QueryRow(
		`SELECT message_id, user_id, credits, raw_amount, processed_at
		 FROM processed_messages WHERE message_id = ?`,
		messageID,
	).Scan(&pm.MessageID, &pm.UserID, &pm.Credits, &pm.RawAmount, &processedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	pm.ProcessedAt = time.Unix(processedAt, 0)
	return &pm, nil
}

// --- Stats ---

// Stats returns system-wide totals for the admin stats command.
func (s *Storage) Stats() (*Stats, error) {
	var st Stats

	err := s.db.QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(balance), 0) FROM balances",
	).Scan(&st.Users, &st.TotalCredits)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRow(
		"SELECT COUNT(*) FROM processed_messages",
	).Scan(&st.Processed)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRow(
		"SELECT user_id, balance FROM balances ORDER BY balance DESC, user_id LIMIT 1",
	).Scan(&st.TopUserID, &st.TopBalance)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	return &st, nil
}
