// Package apiclient is the authenticated request pipeline for remote functions.
//
// # Overview
//
// Every outbound call goes through Client.Send, which composes the URL from
// the functions base, attaches the API identity and bearer credentials,
// dispatches the call, parses the body, and classifies the outcome:
//
//	status 0 + NETWORK_ERROR   transport never completed
//	*apierr.SessionRequiredError  401 + AUTH_REQUIRED on a protected call
//	status + classified Record     any other non-2xx status
//	status + data                  2xx
//
// The session-required case is the only error value returned. Everything
// else is reported inside the Result so callers handle one shape.
//
// # Usage
//
//	client, err := apiclient.New(apiclient.Config{
//		BaseURL: "https://project.example.co",
//		AnonKey: anonKey,
//		Tokens:  tokens,
//	})
//
//	res, err := apiclient.Get[[]Notification](ctx, client, "notifications")
//	if apierr.IsSessionRequired(err) {
//		// re-authenticate
//	}
//	if !res.OK() {
//		log.Println(res.Error.Code, res.Error.Message)
//	}
//
// # Typed helpers
//
// Go methods cannot take type parameters, so the typed entry points are
// package functions (Do, Get, Post, Put, Patch, Delete) that accept any
// Sender. Sub-clients depend on Sender so tests can substitute it.
package apiclient
