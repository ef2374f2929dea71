//go:build race

package accounts

import "golang.org/x/crypto/bcrypt"

func passwordHashCost() int {
	// race builds are slow enough without a full bcrypt cost
	return bcrypt.MinCost
}
