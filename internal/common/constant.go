package common

// AuthorizationHeader is the HTTP header used to carry the bearer token on
// outbound API requests.
const AuthorizationHeader = "Authorization"

// BearerPrefix is prepended to the token value in the Authorization header.
const BearerPrefix = "Bearer "
