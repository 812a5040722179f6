// tools_util.go extracts typed parameters from MCP's generic argument map.
//
// Optional parameters fall back to a default when missing or of the wrong
// type. LLMs often omit them or send "true" for true, and a default keeps the
// tool usable. Integers are stricter: a scan number of 1.7 is rejected
// rather than rounded.

package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/jpl-au/exambank/internal/entity"
	"github.com/jpl-au/exambank/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

func arguments(req mcp.CallToolRequest) map[string]any {
	args, _ := req.Params.Arguments.(map[string]any)
	return args
}

// getString returns a string parameter or def.
func getString(req mcp.CallToolRequest, name, def string) string {
	if v, err := req.RequireString(name); err == nil {
		return v
	}
	return def
}

// getBool returns a boolean parameter or def.
func getBool(req mcp.CallToolRequest, name string, def bool) bool { //nolint:unparam
	if v, ok := arguments(req)[name].(bool); ok {
		return v
	}
	return def
}

// getInt returns an integer parameter, or nil when absent. JSON numbers
// arrive as float64; a fractional or non-numeric value is an error.
func getInt(req mcp.CallToolRequest, name string) (*int, error) {
	raw, ok := arguments(req)[name]
	if !ok || raw == nil {
		return nil, nil
	}
	v, ok := raw.(float64)
	if !ok || v != math.Trunc(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%s must be an integer, got %v", name, raw)
	}
	n := int(v)
	return &n, nil
}

// getStrings returns a string array parameter, skipping non-string elements.
// Returns nil when absent.
func getStrings(req mcp.CallToolRequest, name string) []string {
	arr, ok := arguments(req)[name].([]any)
	if !ok {
		return nil
	}
	result := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			result = append(result, s)
		}
	}
	return result
}

// getDecoder returns a Decoder for an object parameter. Clients that send
// the object as a JSON string are accepted too. A missing parameter decodes
// to the zero value.
func getDecoder(req mcp.CallToolRequest, name string) (entity.Decoder, error) {
	switch v := arguments(req)[name].(type) {
	case nil:
		return entity.JSON(nil), nil
	case string:
		return entity.JSON([]byte(v)), nil
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return entity.JSON(data), nil
	default:
		return nil, errors.New(name + " must be an object")
	}
}

// getKind parses the kind parameter.
func getKind(req mcp.CallToolRequest) (store.Kind, *mcp.CallToolResult) {
	s, err := req.RequireString("kind")
	if err != nil {
		return "", mcp.NewToolResultError("kind is required")
	}
	k, err := store.ParseKind(s)
	if err != nil {
		return "", mcp.NewToolResultError(err.Error())
	}
	return k, nil
}

// jsonResult wraps v as pretty-printed JSON.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := store.MarshalJSON(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
