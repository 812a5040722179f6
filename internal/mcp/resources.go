// resources.go serves entities as MCP resources so a client can load one
// into context without a tool call. URIs take the form
// exambank://{kind}/{id}.

package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jpl-au/exambank/internal/entity"
	"github.com/jpl-au/exambank/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// ErrInvalidURI indicates a malformed resource URI.
var ErrInvalidURI = errors.New("invalid URI")

const uriScheme = "exambank://"

// readEntity handles exambank://{kind}/{id} resource requests.
func (h *handlers) readEntity(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if h.svc == nil {
		return nil, errors.New(ErrNotInitialised)
	}

	uri := req.Params.URI
	k, id, err := parseEntityURI(uri)
	if err != nil {
		return nil, err
	}

	v, err := entity.Get(ctx, h.svc, k, id)
	if err != nil {
		return nil, err
	}
	data, err := store.MarshalJSON(v)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// parseEntityURI splits exambank://{kind}/{id}.
func parseEntityURI(uri string) (store.Kind, string, error) {
	rest, ok := strings.CutPrefix(uri, uriScheme)
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidURI, uri)
	}
	kind, id, ok := strings.Cut(rest, "/")
	if !ok || kind == "" || id == "" || strings.Contains(id, "/") {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidURI, uri)
	}
	k, err := store.ParseKind(kind)
	if err != nil {
		return "", "", err
	}
	return k, id, nil
}
