package utils

import (
	"net/url"
)

// SetQuery returns rawURL with every key of params set, replacing existing values.
func SetQuery(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range params {
		q[k] = v
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// RedactURL hides the password of rawURL so it can be logged.
// Unparseable input is returned as "invalid-url".
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url"
	}
	return u.Redacted()
}
