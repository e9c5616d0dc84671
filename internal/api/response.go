// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

package api

import "time"

// APIResponse is the uniform JSON envelope for every endpoint.
//
//	{
//	  "status": "success",
//	  "data": {...},
//	  "metadata": {"request_id": "…", "timestamp": "…"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries per-response observability fields.
type Metadata struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// APIError is a machine-readable error payload.
//
// Error codes used by this API:
//   - VALIDATION_ERROR: malformed request or event
//   - USER_NOT_FOUND: unknown user (distinct from a known user with no history)
//   - CATALOG_UNAVAILABLE: no catalog snapshot has ever loaded
//   - BACKEND_ERROR: upstream store failure
//   - INTERNAL_ERROR: anything else
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
