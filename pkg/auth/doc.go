/*
Package auth provides admin authentication for the portfolio API.

# Password Hashing

Passwords are hashed with bcrypt (golang.org/x/crypto/bcrypt). Hashes are
stored by the document store and never leave the server.

Example:

	hash, err := auth.HashPassword("user-password")
	if err != nil {
		// handle error
	}

	err = auth.CheckPassword("user-password", hash)
	// Returns nil if password matches

# Login Tokens

A successful login returns an HS256 JWT whose "id" claim is the user id.
Tokens expire after 30 days by default.

Example:

	a, _ := auth.NewAuthenticator(db, auth.Config{Secret: secret}, log)
	res, err := a.Login(ctx, "admin", password, router.ClientIP(r))
	// res.Token goes into "Authorization: Bearer <token>"

# Lockout

Five consecutive failed logins from one client lock that username for that
client for 15 minutes. Only usernames that exist are counted. The counters
live in memory, reset on success or restart, and StartCleanup drops the
ones that have expired or gone idle.

A successful login against a hash weaker than DefaultBCryptCost stores a
new hash through UserStore.SetPassword.

# Middleware

Protect requires a valid bearer token and RequireAdmin additionally requires
the user to be an administrator. Rejections are JSON {"message": "..."}.
*/
package auth
