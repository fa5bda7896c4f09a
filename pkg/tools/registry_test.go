package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-bot/pkg/llm"
)

// fakeTool — минимальный инструмент для тестов реестра.
type fakeTool struct {
	def    ToolDefinition
	result string
	err    error
	calls  int
}

func (f *fakeTool) Definition() ToolDefinition { return f.def }

func (f *fakeTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	f.calls++
	return f.result, f.err
}

func validDef(name string) ToolDefinition {
	return ToolDefinition{
		Name:        name,
		Description: "test tool",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"link": map[string]interface{}{"type": "string"},
			},
			"required": []interface{}{"link"},
		},
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	tool := &fakeTool{def: validDef("my_tool")}

	require.NoError(t, r.Register(tool))

	got, err := r.Get("my_tool")
	require.NoError(t, err)
	assert.Equal(t, tool, got)
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("missing")
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestRegistry_RegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		def     ToolDefinition
		wantErr bool
	}{
		{
			name:    "valid definition",
			def:     validDef("ok_tool"),
			wantErr: false,
		},
		{
			name:    "empty name",
			def:     ToolDefinition{Parameters: map[string]interface{}{"type": "object"}},
			wantErr: true,
		},
		{
			name:    "nil parameters",
			def:     ToolDefinition{Name: "bad"},
			wantErr: true,
		},
		{
			name: "type is not object",
			def: ToolDefinition{
				Name:       "bad",
				Parameters: map[string]interface{}{"type": "string"},
			},
			wantErr: true,
		},
		{
			name: "required is not an array",
			def: ToolDefinition{
				Name: "bad",
				Parameters: map[string]interface{}{
					"type":     "object",
					"required": "link",
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(&fakeTool{def: tt.def})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegistry_GetDefinitions(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeTool{def: validDef("tool_a")}))
	require.NoError(t, r.Register(&fakeTool{def: validDef("tool_b")}))

	defs := r.GetDefinitions()
	require.Len(t, defs, 2)

	names := []string{defs[0].Name, defs[1].Name}
	assert.ElementsMatch(t, []string{"tool_a", "tool_b"}, names)
}

func TestRegistry_Dispatch(t *testing.T) {
	r := NewRegistry()
	tool := &fakeTool{def: validDef("my_tool"), result: "done"}
	require.NoError(t, r.Register(tool))

	msg, err := r.Dispatch(context.Background(), llm.ToolCall{
		ID:   "call-42",
		Name: "my_tool",
		Args: `{"link":"x"}`,
	})
	require.NoError(t, err)

	assert.Equal(t, llm.RoleTool, msg.Role)
	assert.Equal(t, "call-42", msg.ToolCallID)
	assert.Equal(t, "done", msg.Content)
	assert.Equal(t, 1, tool.calls)
}

func TestRegistry_DispatchUnknownTool(t *testing.T) {
	r := NewRegistry()

	_, err := r.Dispatch(context.Background(), llm.ToolCall{ID: "c1", Name: "missing"})
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestRegistry_DispatchToolError(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")
	require.NoError(t, r.Register(&fakeTool{def: validDef("my_tool"), err: boom}))

	_, err := r.Dispatch(context.Background(), llm.ToolCall{ID: "c1", Name: "my_tool"})
	assert.ErrorIs(t, err, boom)
}
