// Package common contains shared constants and sentinel errors used across
// the TradeGuard client and the mock backend.
package common

// AuthorizationHeader carries the bearer credential on outbound requests.
const AuthorizationHeader = "Authorization"

// BearerPrefix precedes the credential in AuthorizationHeader.
const BearerPrefix = "Bearer "

// RequestIDHeader correlates a client call with backend logs.
const RequestIDHeader = "X-Request-ID"

// Keys of the persisted session pair in the local metadata store.
const (
	CredentialKey = "access_token"
	IdentityKey   = "user"
)

// AppName is used in the user agent and default file names.
const AppName = "tradeguard"
