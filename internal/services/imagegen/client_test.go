package imagegen_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gaffer/internal/executor"
	"gaffer/internal/services/imagegen"
)

func newClient(serverURL string, opts ...imagegen.Option) *imagegen.Client {
	base := []imagegen.Option{
		imagegen.WithSleeper(func(time.Duration) {}),
	}
	return imagegen.NewClient(imagegen.Config{
		APIKey:  "test-key",
		BaseURL: serverURL,
		Model:   "gpt-image-1",
	}, append(base, opts...)...)
}

func TestGenerateImageDecodesInlinePayload(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprintf(w, `{"data":[{"b64_json":%q}]}`, base64.StdEncoding.EncodeToString([]byte("png-bytes")))
	}))
	defer server.Close()

	media, err := newClient(server.URL).GenerateImage(context.Background(), executor.ImageRequest{
		Prompt: "a lighthouse",
		ReferenceImages: []executor.AssetRef{
			{ID: "a1", URL: "https://cdn/ref.png"},
		},
	})
	if err != nil {
		t.Fatalf("GenerateImage failed: %v", err)
	}
	if string(media.Data) != "png-bytes" || media.ContentType != "image/png" {
		t.Fatalf("unexpected media: %q %s", media.Data, media.ContentType)
	}
	if gotBody["model"] != "gpt-image-1" || gotBody["prompt"] != "a lighthouse" {
		t.Fatalf("unexpected request body: %#v", gotBody)
	}
	urls, _ := gotBody["image_urls"].([]any)
	if len(urls) != 1 || urls[0] != "https://cdn/ref.png" {
		t.Fatalf("reference urls not forwarded: %#v", gotBody)
	}
}

func TestGenerateImageDownloadsURLPayload(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/image.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("downloaded-bytes"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":[{"url":%q}]}`, server.URL+"/image.png")
	})

	media, err := newClient(server.URL).GenerateImage(context.Background(), executor.ImageRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("GenerateImage failed: %v", err)
	}
	if string(media.Data) != "downloaded-bytes" {
		t.Fatalf("unexpected media: %q", media.Data)
	}
}

func TestGenerateImageRetriesOnServerError(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintf(w, `{"data":[{"b64_json":%q}]}`, base64.StdEncoding.EncodeToString([]byte("ok")))
	}))
	defer server.Close()

	media, err := newClient(server.URL, imagegen.WithRetryMaxAttempts(3)).
		GenerateImage(context.Background(), executor.ImageRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("GenerateImage failed after retries: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if string(media.Data) != "ok" {
		t.Fatalf("unexpected media: %q", media.Data)
	}
}

func TestGenerateImageDoesNotRetryClientErrors(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "bad prompt", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := newClient(server.URL, imagegen.WithRetryMaxAttempts(3)).
		GenerateImage(context.Background(), executor.ImageRequest{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "http 400") {
		t.Fatalf("expected http 400 error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("client errors must not retry, got %d attempts", attempts)
	}
}

func TestGenerateImageSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"message":"content policy violation"}}`)
	}))
	defer server.Close()

	_, err := newClient(server.URL).GenerateImage(context.Background(), executor.ImageRequest{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "content policy violation") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestGenerateImageRequiresPromptAndKey(t *testing.T) {
	client := newClient("http://127.0.0.1:0")
	if _, err := client.GenerateImage(context.Background(), executor.ImageRequest{}); err == nil {
		t.Fatal("expected error for empty prompt")
	}

	unkeyed := imagegen.NewClient(imagegen.Config{BaseURL: "http://127.0.0.1:0"})
	if _, err := unkeyed.GenerateImage(context.Background(), executor.ImageRequest{Prompt: "x"}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
