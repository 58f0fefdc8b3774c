package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a ledger record.
type TransactionKind string

const (
	TransactionKindTransfer TransactionKind = "transfer"
	TransactionKindLoan     TransactionKind = "loan"
	TransactionKindRepay    TransactionKind = "repay"
)

// IsValid checks if the kind is known.
func (k TransactionKind) IsValid() bool {
	switch k {
	case TransactionKindTransfer, TransactionKindLoan, TransactionKindRepay:
		return true
	}
	return false
}

// ChainSentinel is the PrevHash of the first transaction in the chain.
const ChainSentinel = ""

// Transaction is a single immutable record in the hash-chained ledger.
// A nil Sender marks a mint, a nil Recipient marks a burn; both are
// administrative balance corrections.
type Transaction struct {
	ID          string
	Seq         int64
	Sender      *string
	Recipient   *string
	Amount      decimal.Decimal
	Kind        TransactionKind
	Description string
	CreatedAt   time.Time
	PrevHash    string
	Hash        string
}

// ComputeHash returns the sha256 digest over the record's identifying
// fields. The digest covers PrevHash, which is what links the chain.
func (t *Transaction) ComputeHash() string {
	payload := strings.Join([]string{
		t.ID,
		participant(t.Recipient),
		participant(t.Sender),
		t.Amount.String(),
		t.CreatedAt.UTC().Format(time.RFC3339Nano),
		string(t.Kind),
		t.PrevHash,
	}, "|")

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Involves reports whether username is a party to this transaction.
func (t *Transaction) Involves(username string) bool {
	return (t.Sender != nil && *t.Sender == username) ||
		(t.Recipient != nil && *t.Recipient == username)
}

// SignedAmountFor returns the balance effect of this transaction on
// username: negative when username is the sender, positive when the
// recipient, zero otherwise. Records with a nil counterparty only
// affect the named side.
func (t *Transaction) SignedAmountFor(username string) decimal.Decimal {
	if t.Sender != nil && *t.Sender == username {
		return t.Amount.Neg()
	}
	if t.Recipient != nil && *t.Recipient == username {
		return t.Amount
	}
	return decimal.Zero
}

// ChainBreak scans transactions in insertion order and returns the
// index of the first record whose stored PrevHash does not match the
// recomputed hash of its predecessor, or whose stored Hash does not
// match its own recomputation. The first record must carry the
// sentinel PrevHash. Returns (-1, false) when the chain is intact.
func ChainBreak(transactions []*Transaction) (int, bool) {
	prev := ChainSentinel
	for i, tx := range transactions {
		if tx.PrevHash != prev {
			return i, true
		}
		recomputed := tx.ComputeHash()
		if tx.Hash != recomputed {
			return i, true
		}
		prev = recomputed
	}
	return -1, false
}

// RelinkChain recomputes every PrevHash/Hash pair in insertion order.
// Used to repair the links after a participant rename rewrote stored
// fields that the digest covers.
func RelinkChain(transactions []*Transaction) {
	prev := ChainSentinel
	for _, tx := range transactions {
		tx.PrevHash = prev
		tx.Hash = tx.ComputeHash()
		prev = tx.Hash
	}
}

func participant(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
