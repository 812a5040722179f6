package extension

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testExtension struct {
	name  string
	tools []MCPTool
}

func (e testExtension) Name() string               { return e.name }
func (e testExtension) Commands() []*cobra.Command { return nil }
func (e testExtension) MCPTools() []MCPTool        { return e.tools }

func TestRegister_PanicOnDuplicate(t *testing.T) {
	name := "test-duplicate-panic"
	Register(testExtension{name: name})

	assert.Panics(t, func() { Register(testExtension{name: name}) })
}

func TestRegister_OrderAndLookup(t *testing.T) {
	Register(testExtension{name: "test-order-a"})
	Register(testExtension{name: "test-order-b", tools: []MCPTool{{Tool: mcp.NewTool("test_tool")}}})

	names := Names()
	ia, ib := -1, -1
	for i, n := range names {
		switch n {
		case "test-order-a":
			ia = i
		case "test-order-b":
			ib = i
		}
	}
	require.NotEqual(t, -1, ia)
	assert.Less(t, ia, ib)

	require.NotNil(t, Get("test-order-b"))
	assert.Nil(t, Get("test-order-missing"))

	var found bool
	for _, tool := range Tools() {
		if tool.Tool.Name == "test_tool" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestChangeEvent(t *testing.T) {
	e := ChangeEvent{Kind: "question", ID: "q1", Op: "insert"}
	assert.Equal(t, EventType("question:insert"), e.EventType())
	assert.Equal(t, "q1", e.EventID())
}
