package models

import (
	"sync"
	"time"
)

// Transaction is one append-only ledger entry. Amount is signed.
type Transaction struct {
	Amount  float64
	Reason  string
	Created time.Time
}

// Wallet is a user's transaction ledger. The balance is always the sum of
// the transaction amounts; there is no separately stored total to drift.
type Wallet struct {
	Owner string

	mu  sync.Mutex
	txs []Transaction
}

func NewWallet(owner string) *Wallet {
	return &Wallet{Owner: owner}
}

// RestoreWallet rebuilds a wallet from persisted state.
func RestoreWallet(owner string, txs []Transaction) *Wallet {
	return &Wallet{Owner: owner, txs: txs}
}

// Credit appends a transaction with the given signed amount.
func (w *Wallet) Credit(amount float64, reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.txs = append(w.txs, Transaction{Amount: amount, Reason: reason, Created: time.Now()})
}

// Balance returns the sum of all transaction amounts.
func (w *Wallet) Balance() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	var total float64
	for _, tx := range w.txs {
		total += tx.Amount
	}
	return total
}

// Transactions returns a snapshot of the ledger, in append order.
func (w *Wallet) Transactions() []Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Transaction, len(w.txs))
	copy(out, w.txs)
	return out
}
