// Package accounts manages user accounts: registration with one time
// password verification, cookie based JWT sessions, password resets,
// profile management and role based access.
//
// Account lifecycle:
//   - Register stores an unverified account with a hashed six digit code and
//     publishes a signup event carrying the plain code for delivery.
//   - VerifyOTP moves the account to verified. Verified is terminal.
//   - ResendOTP replaces a pending code and publishes a new signup event.
//
// Events are published after the write commits. A broker failure is logged
// and never fails the request.
//
// Roles:
//   - "user" is the default role. Only an authenticated "admin" may create
//     or promote another admin.
package accounts
