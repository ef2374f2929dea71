package accounts

import "fmt"

type AccountState string

const (
	StateUnverified AccountState = "unverified"
	StateVerified   AccountState = "verified"
)

// accountTransitions lists the moves allowed out of each state. Reissuing
// a code keeps an account unverified. Verified is terminal.
var accountTransitions = map[AccountState]map[AccountState]struct{}{
	StateUnverified: {
		StateUnverified: {},
		StateVerified:   {},
	},
	StateVerified: {},
}

// State reports where the account sits in the verification flow.
func (u *User) State() AccountState {
	if u == nil || !u.IsVerified {
		return StateUnverified
	}
	return StateVerified
}

// CanTransition reports whether an account may move from one state to another
func CanTransition(from, to AccountState) bool {
	allowed, ok := accountTransitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// checkTransition returns ErrInvalidState when u may not move to target
func checkTransition(u *User, target AccountState) error {
	from := u.State()
	if CanTransition(from, target) {
		return nil
	}

	msg := fmt.Sprintf("cannot move account from %s to %s", from, target)
	if from == StateVerified {
		msg = "User is already verified"
	}
	return withMessage(ErrInvalidState, msg, map[string]any{
		"from": string(from),
		"to":   string(target),
	})
}
