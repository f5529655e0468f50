// Package restaurant is the restaurant record service built on the gateway.
//
// The Service maps operations onto the backend's REST routes and leaves
// credentials, caching and error classification to the gateway:
//
//	svc := restaurant.NewService(gw, restaurant.WithLogger(log))
//
//	page, err := svc.List(ctx, 1, 20)
//	if err != nil {
//		return err
//	}
//	for _, r := range page.Items {
//		fmt.Println(r.ID, r.Name)
//	}
//
// Create and Update reject input without a name or address before any
// request is sent. QuickSearch does the same for queries shorter than two
// characters and returns an empty page.
//
// # List Envelopes
//
// The backend has answered list requests in several shapes over time.
// NormalizeList classifies a response once and converts it into a Page:
//
//	hydra    {"hydra:member": [...], "hydra:totalItems": n, "hydra:view": {...}}
//	results  {"results": [...], "count": n, "pagination": {...}}
//	data     {"data": [...], "total": n}
//	array    [...]
//
// Anything else becomes an empty page.
package restaurant
