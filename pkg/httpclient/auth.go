package httpclient

import "net/http"

// BearerInterceptor stamps every outgoing request with the consultant's API
// token.
type BearerInterceptor struct {
	Token string
}

func (b *BearerInterceptor) BeforeRequest(req *http.Request) error {
	if b.Token != "" {
		req.Header.Set("Authorization", "Bearer "+b.Token)
	}
	return nil
}

func (b *BearerInterceptor) AfterResponse(*http.Response) error { return nil }

var _ Interceptor = (*BearerInterceptor)(nil)
