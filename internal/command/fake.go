package command

import (
	"context"
	"strings"
	"sync"
)

// Call is one invocation recorded by Fake.
type Call struct {
	Name string
	Args []string
}

// String joins the program and its arguments with spaces.
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Response is what Fake returns for a command line.
type Response struct {
	Output []byte
	Err    error
}

// Fake is a Runner for tests. Responses are keyed by the full command line
// ("systemctl is-active tor"); unknown command lines succeed with no output.
type Fake struct {
	mu        sync.Mutex
	Responses map[string]Response
	// Handler, when set, takes precedence over Responses.
	Handler func(call Call) Response
	calls   []Call
}

// Run records the call and returns the configured response.
func (f *Fake) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	call := Call{Name: name, Args: append([]string(nil), args...)}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	handler := f.Handler
	resp, ok := f.Responses[call.String()]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if handler != nil {
		r := handler(call)
		return r.Output, r.Err
	}
	if ok {
		return resp.Output, resp.Err
	}
	return nil, nil
}

// Calls returns the recorded invocations as command lines.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.String()
	}
	return out
}
