package ports

import "github.com/stellrflow/anchord/internal/core/domain"

// RepoManager gives access to the record stores of the ramp ledgers. It is
// instantiated once per process and injected into the application services.
type RepoManager interface {
	DepositRepository() domain.DepositRepository
	WithdrawalRepository() domain.WithdrawalRepository
	AddressBookRepository() domain.AddressBookRepository
	Close()
}
