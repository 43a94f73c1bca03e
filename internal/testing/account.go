package testing

import (
	"fmt"

	"github.com/LeJamon/goAMM/internal/core/ledger"
)

// Account is a named test account. The same name always yields the same ID.
type Account struct {
	// Name is a human-readable identifier used in failure messages.
	Name string

	// ID is the ledger account derived from the name.
	ID ledger.AccountID
}

// NewAccount creates the account for name.
func NewAccount(name string) *Account {
	return &Account{Name: name, ID: ledger.AccountFromName(name)}
}

// SetterAccount is the account a TestEnv configures as the protocol fee setter.
func SetterAccount() *Account {
	return NewAccount("setter")
}

// Human returns the hex form of the account ID.
func (a *Account) Human() string {
	return a.ID.String()
}

// String returns a string representation of the account.
func (a *Account) String() string {
	return fmt.Sprintf("%s (%s)", a.Name, a.ID)
}
