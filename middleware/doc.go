// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (duration_ms).

# Caller Identity

Users are authenticated by an upstream gateway that sets X-User-ID and, when
it has verified one, X-User-Email. Share links travel as the ?share= query
parameter or the X-Share-Token header:

	userID := middleware.UserID(r)       // "" when anonymous
	email := middleware.UserEmail(r)     // lowercased, "" when unverified
	token := middleware.ShareToken(r)    // "" when absent

RequireUser rejects requests without X-User-ID with 401.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.WriteError(w, r, err) // status from apperr kind

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r) // X-Forwarded-For, X-Real-IP, RemoteAddr
*/
package middleware
