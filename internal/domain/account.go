package domain

// CashBookAccountID is the distinguished account representing money entering
// and leaving the system through deposits and withdrawals. It is the only
// account whose derived balance may go negative, and it is never row-locked
// so that concurrent deposits and withdrawals do not serialize on it.
const CashBookAccountID int64 = 0

// Account is an immutable snapshot of a ledger account. Balance is never
// stored; it is always derived from the account's postings at read time.
type Account struct {
	ID      int64
	Name    string
	Balance Money
}

// IsCashBook reports whether id names the cash-book account.
func IsCashBook(id int64) bool {
	return id == CashBookAccountID
}
