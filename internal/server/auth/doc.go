// Package auth is the credential core of the server: password hashing and
// verification, bearer token issuance and validation, and the login and
// request-authentication decisions built on top of them.
//
// Secrets are constructed once by the application root and injected into
// every component that needs them. CPU-heavy primitives run on a shared,
// bounded Runner.
package auth
