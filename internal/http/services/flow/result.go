package flow

// Result is the explicit outcome of a flow step. Exactly one branch is set;
// the controller layer translates it into an HTTP response. Services never
// write to the ResponseWriter and never panic for control flow.
type Result struct {
	Redirect *RedirectResult
	Rendered *RenderedResult
	Failed   *FlowError
}

// RedirectResult pide un 302 hacia Location.
type RedirectResult struct {
	Location string
}

// RenderedResult pide renderizar una página del gateway (sin redirect).
type RenderedResult struct {
	Page string
	Data map[string]any
}

func redirectTo(location string) *Result {
	return &Result{Redirect: &RedirectResult{Location: location}}
}

func rendered(page string, data map[string]any) *Result {
	return &Result{Rendered: &RenderedResult{Page: page, Data: data}}
}

func failed(err *FlowError) *Result {
	return &Result{Failed: err}
}

// StartResult carries everything the login controller needs: the provider
// authorization URL plus the three sealed single-use values that must travel
// as cookies across the redirect.
type StartResult struct {
	AuthURL       string
	StateToken    string
	NonceToken    string
	VerifierToken string
}

// CallbackInput is the callback request seen by the service: query params and
// the sealed cookie values. The controller extracts both; the service stays
// HTTP-free.
type CallbackInput struct {
	Code             string
	State            string
	ErrorCode        string
	ErrorDescription string

	StateToken    string
	NonceToken    string
	VerifierToken string
}

// CallbackResult adds the sealed session token to the generic result. The
// controller sets the session cookie when SessionToken is non-empty and
// clears the three state cookies on every outcome.
type CallbackResult struct {
	Result
	SessionToken string
}
