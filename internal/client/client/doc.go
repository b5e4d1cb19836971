// Package client contains the client side of the gophauth API.
//
// GRPCClient holds a connection to the server, keeps the access token
// obtained by Login in memory and attaches it as "authorization: Bearer <t>"
// to every later call. gRPC status codes are mapped to the sentinel errors
// in errors.go so callers can match them with errors.Is.
package client
