package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/serroba/link-shortener/internal/analytics"
	"github.com/serroba/link-shortener/internal/links"
	"github.com/serroba/link-shortener/internal/messaging"
	"go.uber.org/zap"
)

// LinkHandler serves the link API.
type LinkHandler struct {
	service         *links.Service
	baseURL         string
	publishCreated  messaging.Publish[analytics.LinkCreatedEvent]
	publishAccessed messaging.Publish[analytics.LinkAccessedEvent]
	logger          *zap.Logger
	now             func() time.Time
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(
	service *links.Service,
	baseURL string,
	publishCreated messaging.Publish[analytics.LinkCreatedEvent],
	publishAccessed messaging.Publish[analytics.LinkAccessedEvent],
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		service:         service,
		baseURL:         strings.TrimRight(baseURL, "/"),
		publishCreated:  publishCreated,
		publishAccessed: publishAccessed,
		logger:          logger,
		now:             time.Now,
	}
}

func (h *LinkHandler) ListLinks(ctx context.Context, _ *struct{}) (*ListLinksResponse, error) {
	all, err := h.service.ListLinks(ctx)
	if err != nil {
		return nil, h.toAPIError("list", err)
	}

	resp := &ListLinksResponse{}
	resp.Body.Links = make([]LinkBody, len(all))

	for i, link := range all {
		resp.Body.Links[i] = h.linkBody(link)
	}

	return resp, nil
}

func (h *LinkHandler) AddLink(ctx context.Context, req *AddLinkRequest) (*AddLinkResponse, error) {
	created, err := h.service.AddLink(ctx, links.NewLink{ID: req.Body.LinkID, Target: req.Body.Target})
	if err != nil {
		return nil, h.toAPIError("add", err)
	}

	h.emitCreated(ctx, created, false)

	body := h.createdBody(created)

	return &AddLinkResponse{Location: body.Link, Body: body}, nil
}

func (h *LinkHandler) BulkAddLinks(ctx context.Context, req *BulkAddLinkRequest) (*BulkAddLinkResponse, error) {
	reqs := make([]links.NewLink, len(req.Body))
	for i, item := range req.Body {
		reqs[i] = links.NewLink{ID: item.LinkID, Target: item.Target}
	}

	created, err := h.service.AddLinks(ctx, reqs)
	if err != nil {
		return nil, h.toAPIError("bulk_add", err)
	}

	resp := &BulkAddLinkResponse{}
	resp.Body.Links = make([]CreatedLinkBody, len(created))

	for i, c := range created {
		h.emitCreated(ctx, c, true)
		resp.Body.Links[i] = h.createdBody(c)
	}

	return resp, nil
}

func (h *LinkHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	link, err := h.service.Resolve(ctx, req.LinkID)
	if err != nil {
		return nil, h.toAPIError("redirect", err)
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkAccessedEvent{
		LinkID:     link.ID,
		AccessedAt: h.now().UTC(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	}

	if err := h.publishAccessed(ctx, event); err != nil {
		h.logger.Error("failed to publish access event",
			zap.String("link_id", event.LinkID),
			zap.Error(err),
		)
	}

	return &RedirectResponse{Status: http.StatusTemporaryRedirect, Location: link.Target}, nil
}

func (h *LinkHandler) EditLink(ctx context.Context, req *EditLinkRequest) (*LinkResponse, error) {
	link, err := h.service.EditLink(ctx, links.Edit{
		ID:         req.Body.LinkID,
		ControlKey: req.Body.ControlKey,
		Changes:    links.Changes{NewID: req.Body.NewLinkID, Target: req.Body.Target},
	})
	if err != nil {
		return nil, h.toAPIError("edit", err)
	}

	return &LinkResponse{Body: h.linkBody(link)}, nil
}

func (h *LinkHandler) DeleteLink(ctx context.Context, req *DeleteLinkRequest) (*struct{}, error) {
	if err := h.service.DeleteLink(ctx, req.Body.LinkID, req.Body.ControlKey); err != nil {
		return nil, h.toAPIError("delete", err)
	}

	return &struct{}{}, nil
}

func (h *LinkHandler) CheckID(ctx context.Context, req *CheckIDRequest) (*CheckIDResponse, error) {
	available, err := h.service.CheckID(ctx, req.LinkID)
	if err != nil {
		return nil, h.toAPIError("check_id", err)
	}

	resp := &CheckIDResponse{}
	resp.Body.LinkID = req.LinkID
	resp.Body.Available = available

	return resp, nil
}

func (h *LinkHandler) emitCreated(ctx context.Context, created *links.Created, bulk bool) {
	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkCreatedEvent{
		LinkID:    created.Link.ID,
		Target:    created.Link.Target,
		Bulk:      bulk,
		CreatedAt: created.Link.AddedAt,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	}

	if err := h.publishCreated(ctx, event); err != nil {
		h.logger.Error("failed to publish analytics event",
			zap.String("link_id", event.LinkID),
			zap.Error(err),
		)
	}
}

func (h *LinkHandler) shortLink(id string) string {
	return h.baseURL + "/l/" + url.PathEscape(id)
}

func (h *LinkHandler) linkBody(link *links.Link) LinkBody {
	return LinkBody{
		LinkID:     link.ID,
		Target:     link.Target,
		Link:       h.shortLink(link.ID),
		AddedAt:    link.AddedAt,
		VisitCount: link.VisitCount,
	}
}

func (h *LinkHandler) createdBody(created *links.Created) CreatedLinkBody {
	return CreatedLinkBody{
		LinkID:     created.Link.ID,
		Target:     created.Link.Target,
		Link:       h.shortLink(created.Link.ID),
		ControlKey: created.ControlKey,
	}
}
