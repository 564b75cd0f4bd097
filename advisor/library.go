package advisor

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Function is a tool the model can call during a conversation.
type Function interface {
	// Declaration declares this function to the model.
	Declaration() *genai.FunctionDeclaration
	// Call performs the call.
	Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

// Library is a set of functions offered to the model.
type Library struct {
	functions []Function
}

// NewLibrary creates a library of functions.
func NewLibrary(functions ...Function) *Library {
	return &Library{functions: functions}
}

// Declarations returns the declarations of all functions.
func (l *Library) Declarations() []*genai.FunctionDeclaration {
	if l == nil {
		return nil
	}
	result := make([]*genai.FunctionDeclaration, 0, len(l.functions))
	for _, f := range l.functions {
		result = append(result, f.Declaration())
	}
	return result
}

// Call dispatches a function call to the function with the same name.
func (l *Library) Call(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
	if l != nil {
		for _, f := range l.functions {
			if f.Declaration().Name == call.Name {
				return f.Call(ctx, call.ID, call.Args)
			}
		}
	}
	return &genai.FunctionResponse{
		ID:   call.ID,
		Name: call.Name,
		Response: map[string]any{
			"error": fmt.Sprintf("unknown function %s", call.Name),
		},
	}
}

// Func implements a simple Function.
type Func struct {
	Decl *genai.FunctionDeclaration
	Func func(ctx context.Context, args map[string]any) (string, error)
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }

func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	resp := &genai.FunctionResponse{ID: id, Name: f.Decl.Name}
	out, err := f.Func(ctx, args)
	if err != nil {
		resp.Response = map[string]any{"error": err.Error()}
		return resp
	}
	resp.Response = map[string]any{"output": out}
	return resp
}
