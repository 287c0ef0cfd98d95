// Package jwt reads the claims of auth server access tokens.
//
// The session layer only needs to know when an access token expires so it can
// refresh ahead of time; it never trusts the claims for authorization. Decode
// therefore parses the payload without verifying the signature.
//
//	claims, err := jwt.Decode(session.AccessToken)
//	if err == nil && claims.ExpiresWithin(time.Now(), 90*time.Second) {
//	    // refresh
//	}
package jwt
