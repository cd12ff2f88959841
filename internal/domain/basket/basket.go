package basket

import "errors"

var (
	ErrNotFound          = errors.New("basket: wrong product")
	ErrInvalidQuantity   = errors.New("basket: quantity must be greater than zero")
	ErrInsufficientStock = errors.New("basket: too many goods")
	ErrCorruptState      = errors.New("basket: corrupt guest basket state")
)

type OwnerKind string

const (
	OwnerUser  OwnerKind = "user"
	OwnerGuest OwnerKind = "guest"
)

// Owner is the identity basket lines are grouped under: a durable user
// account or an ephemeral guest session.
type Owner struct {
	Kind OwnerKind
	ID   string
}

func UserOwner(userID string) Owner { return Owner{Kind: OwnerUser, ID: userID} }

func GuestOwner(sessionID string) Owner { return Owner{Kind: OwnerGuest, ID: sessionID} }

// Line is one basket entry. Quantity is always positive: a line that would
// reach zero is deleted, never stored.
type Line struct {
	Owner     Owner
	ProductID string
	Quantity  int
}
