// Package cli provides the interactive gophauth command-line client.
//
// The REPL (see runREPL) supports register, login, me, profile, avatar,
// ping and logout. Passwords are read from the terminal without echo and
// wiped after use. The access token lives only in memory for the session.
package cli
