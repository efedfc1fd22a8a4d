package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token
// on outbound gateway requests.
const AuthorizationHeaderName = "Authorization"

// APIKeyHeaderName is the HTTP header carrying the hosted database project
// key on outbound gateway requests.
const APIKeyHeaderName = "apikey"
