// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware wraps bonk's handlers and carries their JSON helpers.

WithLogging records the status each handler writes and emits one slog line
per request (method, path, status, client_ip, duration_ms), at error level
for 5xx responses. The router wraps every API route with it.

CORS wraps the whole mux in main and answers preflight requests with 204.
The X-Admin-Key and X-Voter-Token headers are allowed through.

Handlers reply with JSONResponse and ErrorResponse, and read request bodies
with ParseJSONBody, which stops after MaxBodyBytes:

	var req models.BookRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

GetClientIP prefers X-Forwarded-For, then X-Real-IP, then RemoteAddr.
*/
package middleware
