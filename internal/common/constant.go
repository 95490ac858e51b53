package common

// AccessTokenHeaderName is the HTTP header used to carry the access token on
// outbound API requests.
const AccessTokenHeaderName = "Authorization"

// AccessTokenScheme prefixes the token value in the Authorization header.
const AccessTokenScheme = "Bearer"
