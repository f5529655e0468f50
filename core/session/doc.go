// Package session manages the authenticated identity on top of a gateway.
//
// A Manager is either Anonymous or Authenticated. Login and Register move it to
// Authenticated after installing the issued credential on the gateway. Logout,
// a failed identity confirmation and any 401 seen by the gateway move it back.
// Credential refresh replaces the credential without changing state.
//
//	gw, _ := gateway.New(baseURL, gateway.WithStore(store))
//	m := session.NewManager(gw, session.WithLogger(log))
//
//	id := m.AddListener(func(st session.State) {
//		fmt.Println("authenticated:", st.IsAuthenticated)
//	})
//	defer m.RemoveListener(id)
//
//	if _, err := m.Login(ctx, "user@example.com"); err != nil {
//		return err // message is ready to show to the user
//	}
//
// Listeners run synchronously, in registration order, outside the Manager's lock,
// over a snapshot of the registry. A listener may add or remove listeners, including
// itself; the change applies from the next notification.
//
// Logout never fails: the backend call is best-effort and local state is always cleared.
// CurrentUser treats a 404 from the identity endpoint as "route not available" and
// returns the cached identity instead of failing.
package session
