package assistant

import "context"

// Request carries one assistant invocation to the language model.
type Request struct {
	SystemInstruction string
	Prompt            string
	Tools             []FunctionDeclaration
}

// FunctionCall is one structured operation invocation returned by the
// model. Args are loosely typed; the interpreter validates every field
// and fails closed on anything unrecognized.
type FunctionCall struct {
	Name string
	Args map[string]any
}

// Response is the model's reply: free text plus zero or more calls.
type Response struct {
	Text  string
	Calls []FunctionCall
}

// Provider sends a prompt plus the command contract to an external
// language model. Implementations live alongside this package; tests use
// scripted fakes.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}
