package common

// AuthorizationHeaderName is the gRPC/HTTP metadata key used to carry the
// bearer token on outbound requests.
const AuthorizationHeaderName = "authorization"

// BearerScheme prefixes the token inside the authorization header.
const BearerScheme = "Bearer"
