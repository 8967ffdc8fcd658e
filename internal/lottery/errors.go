package lottery

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBet       = errors.New("invalid number of tickets bet")
	ErrNotEnoughTickets = errors.New("not enough tickets to draw")
	ErrNoTickets        = errors.New("draw needs at least one ticket")
	ErrNegativeBalance  = errors.New("negative balance")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrDrawMismatch     = errors.New("draw does not match allocation")
)

// InvalidBetError describes a rejected ticket request.
type InvalidBetError struct {
	Requested  int
	Max        int
	Affordable int
}

func (e *InvalidBetError) Error() string {
	return fmt.Sprintf("%s: requested %d, maximum %d, affordable %d",
		ErrInvalidBet, e.Requested, e.Max, e.Affordable)
}

func (e *InvalidBetError) Unwrap() error {
	return ErrInvalidBet
}

// NotEnoughTicketsError reports a pool below MinTickets.
type NotEnoughTicketsError struct {
	Minimum int
	Sold    int
}

func (e *NotEnoughTicketsError) Error() string {
	return fmt.Sprintf("%s: minimum %d, sold %d", ErrNotEnoughTickets, e.Minimum, e.Sold)
}

func (e *NotEnoughTicketsError) Unwrap() error {
	return ErrNotEnoughTickets
}

// Shortfall returns how many more tickets were needed.
func (e *NotEnoughTicketsError) Shortfall() int {
	return e.Minimum - e.Sold
}
