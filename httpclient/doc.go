// Package httpclient is the outbound HTTP layer used by every upstream
// integration: transcription providers, the image tagging service and the
// search backend.
//
// It handles base URLs, default headers, per-request auth, JSON and
// multipart bodies, optional retry, client spans, and classifies non-2xx
// statuses into typed errors that AsAppError maps onto application codes.
//
//	client, _ := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.deepgram.com",
//	    Timeout: 30 * time.Second,
//	    Auth:    httpclient.TokenAuth(key),
//	})
//	resp, err := client.Do(ctx, httpclient.Request{Method: http.MethodPost, Path: "/v1/listen", Body: audio})
package httpclient
