package httpclient

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"testing"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestFileUpload_Encode(t *testing.T) {
	tests := []struct {
		name     string
		upload   FileUpload
		wantName string
		wantType string
	}{
		{"explicit type", FileUpload{Field: "image", FileName: "shot.png", ContentType: "image/png", Data: []byte("x")}, "shot.png", "image/png"},
		{"sniffed type", FileUpload{Field: "image", FileName: "camera", Data: pngHeader}, "camera", "image/png"},
		{"quoted name", FileUpload{Field: "image", FileName: `my "best" shot.jpg`, ContentType: "image/jpeg", Data: []byte("x")}, `my "best" shot.jpg`, "image/jpeg"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt != "multipart/form-data" {
					t.Errorf("Content-Type = %q, want multipart/form-data", mt)
				}
				file, header, err := r.FormFile(tc.upload.Field)
				if err != nil {
					t.Errorf("FormFile: %v", err)
					return
				}
				defer file.Close()
				data, _ := io.ReadAll(file)
				if string(data) != string(tc.upload.Data) {
					t.Errorf("file data = %q", data)
				}
				if header.Filename != tc.wantName {
					t.Errorf("filename = %q, want %q", header.Filename, tc.wantName)
				}
				if got := header.Header.Get("Content-Type"); got != tc.wantType {
					t.Errorf("part Content-Type = %q, want %q", got, tc.wantType)
				}
				w.Write([]byte(`{"tags":["blue"]}`))
			}))
			defer srv.Close()

			client, _ := New(Config{BaseURL: srv.URL})
			upload := tc.upload
			resp, err := client.Do(context.Background(), Request{Method: http.MethodPost, Path: "/tags", Body: &upload})
			if err != nil {
				t.Fatalf("Do() error: %v", err)
			}
			if string(resp.Body) != `{"tags":["blue"]}` {
				t.Errorf("body = %q", resp.Body)
			}
		})
	}
}

func TestFileUpload_InvalidFieldName(t *testing.T) {
	u := &FileUpload{Field: "", FileName: "a.png", Data: []byte("x")}
	if _, _, err := u.encode(); err == nil {
		t.Error("expected an error for an empty field name")
	}
}
