package handlers

import "time"

// LinkBody is a link as returned by the API. The control key hash is never exposed.
type LinkBody struct {
	LinkID     string    `doc:"The link ID"                   example:"docs"                           json:"linkId"`
	Target     string    `doc:"The URL the link redirects to" example:"https://example.com/very/long" json:"target"`
	Link       string    `doc:"The full short link"           example:"http://localhost:8888/l/docs"   json:"link"`
	AddedAt    time.Time `doc:"When the link was added"                                                json:"addedAt"`
	VisitCount int64     `doc:"Number of recorded visits"     example:"42"                             json:"visitCount"`
}

// NewLinkBody is one link to create.
type NewLinkBody struct {
	LinkID string `doc:"Optional custom link ID; generated when omitted" example:"docs"                         json:"linkId,omitempty" required:"false"`
	Target string `doc:"The URL to shorten"                              example:"https://example.com/very/long" json:"target"`
}

// CreatedLinkBody is a newly created link together with its control key.
type CreatedLinkBody struct {
	LinkID     string `doc:"The link ID"                                        example:"docs"                           json:"linkId"`
	Target     string `doc:"The URL the link redirects to"                      example:"https://example.com/very/long" json:"target"`
	Link       string `doc:"The full short link"                                example:"http://localhost:8888/l/docs"   json:"link"`
	ControlKey string `doc:"Secret needed to edit or delete the link; shown once" example:"V1StGXR8_Z5jdHi6B-myT6Zd"       json:"controlKey"`
}

// ListLinksResponse is the response for listing links.
type ListLinksResponse struct {
	Body struct {
		Links []LinkBody `doc:"All links, newest first" json:"links"`
	}
}

// AddLinkRequest is the request body for creating a link.
type AddLinkRequest struct {
	Body NewLinkBody
}

// AddLinkResponse is the response for a successfully created link.
type AddLinkResponse struct {
	Location string `doc:"The short link location" header:"Location"`
	Body     CreatedLinkBody
}

// BulkAddLinkRequest is the request body for creating several links at once.
type BulkAddLinkRequest struct {
	Body []NewLinkBody `maxItems:"100" minItems:"1"`
}

// BulkAddLinkResponse is the response for a successful bulk creation.
type BulkAddLinkResponse struct {
	Body struct {
		Links []CreatedLinkBody `doc:"Created links in request order" json:"links"`
	}
}

// RedirectRequest is the request for following a link.
type RedirectRequest struct {
	LinkID string `doc:"The link ID" example:"docs" path:"linkId"`
}

// RedirectResponse redirects to the link target.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// EditLinkRequest is the request body for editing a link.
type EditLinkRequest struct {
	Body struct {
		LinkID     string `doc:"The link to edit"           example:"docs"                     json:"linkId"`
		ControlKey string `doc:"The link's control key"     example:"V1StGXR8_Z5jdHi6B-myT6Zd" json:"controlKey"`
		NewLinkID  string `doc:"New link ID"                example:"guides"                   json:"newLinkId,omitempty" required:"false"`
		Target     string `doc:"New target URL"             example:"https://example.org"      json:"target,omitempty"    required:"false"`
	}
}

// LinkResponse is a single link.
type LinkResponse struct {
	Body LinkBody
}

// DeleteLinkRequest is the request body for deleting a link.
type DeleteLinkRequest struct {
	Body struct {
		LinkID     string `doc:"The link to delete"     example:"docs"                     json:"linkId"`
		ControlKey string `doc:"The link's control key" example:"V1StGXR8_Z5jdHi6B-myT6Zd" json:"controlKey"`
	}
}

// CheckIDRequest is the request for checking whether an ID is free.
type CheckIDRequest struct {
	LinkID string `doc:"The link ID to check" example:"docs" path:"linkId"`
}

// CheckIDResponse reports whether an ID is free.
type CheckIDResponse struct {
	Body struct {
		LinkID    string `doc:"The checked link ID"            json:"linkId"`
		Available bool   `doc:"Whether the ID can still be used" json:"available"`
	}
}
