// Package gateway is the HTTP access layer in front of the restaurant API.
//
// A Gateway owns three pieces of shared state: the active credential, a short-lived
// cache of GET responses and the last rate-limit information reported by the
// backend. All backend traffic goes through its verb methods:
//
//	gw, err := gateway.New("https://api.example.com",
//		gateway.WithStore(store),
//		gateway.WithLogger(log),
//	)
//	if err != nil {
//		return err
//	}
//
//	raw, err := gw.Get(ctx, "/restaurants", gateway.Query{"page": 1, "itemsPerPage": 10})
//	page, err := gateway.Decode[MyPage](raw)
//
// # Credential
//
// When set, the credential is sent in the X-API-KEY header (configurable). The default
// client also keeps a cookie jar, so cookie-based backends work alongside the header.
// A 401 from any verb clears the credential in memory and in the store, then runs
// every hook registered through OnUnauthorized.
//
// # Cache
//
// GET responses are cached for 30 seconds by default, keyed by method and full URL
// including the query string. Query values that are nil or empty are dropped.
// Successful mutations and 204 responses invalidate the affected resource family:
// the declared family prefixing the path (default "/restaurants"), otherwise the
// path's first segment. Changing the credential purges the whole cache.
//
// # Errors
//
// Failures are returned as *Error and match exactly one kind:
//
//	switch {
//	case errors.Is(err, gateway.ErrUnauthorized):
//	case errors.Is(err, gateway.ErrRateLimited):
//	case errors.Is(err, gateway.ErrRequestFailed):
//	case errors.Is(err, gateway.ErrConnection):
//	}
//
// Context cancellation is returned as the context error. No request is retried.
package gateway
