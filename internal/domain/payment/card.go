package payment

import "errors"

var (
	ErrCardNotDigits = errors.New("payment: card number must be digits")
	ErrCardRejected  = errors.New("payment: bad card number")
)

// ValidateCardNumber applies the toy gateway's acceptance rule: the number
// must be all digits, at most 8 characters long, and end in an even digit.
func ValidateCardNumber(number string) error {
	if number == "" {
		return ErrCardNotDigits
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return ErrCardNotDigits
		}
	}
	last := number[len(number)-1]
	if len(number) > 8 || (last-'0')%2 == 1 {
		return ErrCardRejected
	}
	return nil
}
