package core

import (
	"context"
	"net/url"
)

type (
	// API is any client that can dispatch requests against the backend REST
	// contract. Implementations attach the bearer credential from the
	// Keystore at call time and normalize every failure into an error whose
	// message is safe to surface to the user.
	API interface {
		Get(ctx context.Context, path string, query url.Values, out interface{}) error
		// GetPage fetches a paginated list endpoint (payload nested under
		// data.data with a sibling pagination object).
		GetPage(ctx context.Context, path string, query url.Values, out interface{}) (Page, error)
		Post(ctx context.Context, path string, body, out interface{}) error
		Patch(ctx context.Context, path string, body, out interface{}) error
		Delete(ctx context.Context, path string) error
	}

	// Page mirrors the backend's pagination object on list endpoints.
	Page struct {
		Page  int `json:"page"`
		Limit int `json:"limit"`
		Total int `json:"total"`
		Pages int `json:"pages"`
	}
)
