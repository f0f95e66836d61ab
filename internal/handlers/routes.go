package handlers

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers all link routes. Create and edit accept both verbs the public
// API has always allowed.
func RegisterRoutes(api huma.API, h *LinkHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-links",
		Method:      http.MethodGet,
		Path:        "/get-links",
		Summary:     "List links",
		Tags:        []string{"Links"},
	}, h.ListLinks)

	for _, method := range []string{http.MethodPost, http.MethodPut} {
		suffix := "-" + strings.ToLower(method)

		huma.Register(api, huma.Operation{
			OperationID:   "add-link" + suffix,
			Method:        method,
			Path:          "/add-link",
			Summary:       "Add a link",
			Description:   "Adds a link with a custom or generated ID and returns its control key.",
			Tags:          []string{"Links"},
			DefaultStatus: http.StatusCreated,
		}, h.AddLink)

		huma.Register(api, huma.Operation{
			OperationID:   "bulk-add-link" + suffix,
			Method:        method,
			Path:          "/bulk/add-link",
			Summary:       "Add several links",
			Description:   "Adds all links or none. A failure names the offending request.",
			Tags:          []string{"Links"},
			DefaultStatus: http.StatusCreated,
		}, h.BulkAddLinks)
	}

	huma.Register(api, huma.Operation{
		OperationID: "follow-link",
		Method:      http.MethodGet,
		Path:        "/l/{linkId}",
		Summary:     "Follow a link",
		Description: "Redirects to the link target.",
		Tags:        []string{"Links"},
	}, h.Redirect)

	for _, method := range []string{http.MethodPatch, http.MethodPost} {
		huma.Register(api, huma.Operation{
			OperationID: "edit-link-" + strings.ToLower(method),
			Method:      method,
			Path:        "/edit-link",
			Summary:     "Edit a link",
			Tags:        []string{"Links"},
		}, h.EditLink)
	}

	huma.Register(api, huma.Operation{
		OperationID:   "delete-link",
		Method:        http.MethodDelete,
		Path:          "/delete-link",
		Summary:       "Delete a link",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusNoContent,
	}, h.DeleteLink)

	huma.Register(api, huma.Operation{
		OperationID: "check-id",
		Method:      http.MethodGet,
		Path:        "/check-id/{linkId}",
		Summary:     "Check whether a link ID is free",
		Tags:        []string{"Links"},
	}, h.CheckID)
}
