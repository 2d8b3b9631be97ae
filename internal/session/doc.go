// Package session resolves the credential that authenticates the
// notification channel.
//
// The channel reads the token, it never owns it: every connection attempt
// resolves the token fresh from its source of truth (a token file or the
// app's Postgres session store), so rotation and logout are picked up
// without coordination. The Watcher turns the boolean "session is
// authenticated" signal into channel Activate/Deactivate calls.
package session
