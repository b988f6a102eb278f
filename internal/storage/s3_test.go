package storage

import "testing"

func testClient(publicURL string) *Client {
	return &Client{
		bucket:    "images",
		endpoint:  "http://localhost:9000",
		publicURL: publicURL,
	}
}

func TestFileURL(t *testing.T) {
	c := testClient("")
	if got := c.FileURL("uploads/a.jpg"); got != "http://localhost:9000/images/uploads/a.jpg" {
		t.Errorf("path-style URL: got %q", got)
	}

	c = testClient("https://cdn.example.com")
	if got := c.FileURL("uploads/a.jpg"); got != "https://cdn.example.com/uploads/a.jpg" {
		t.Errorf("CDN URL: got %q", got)
	}
}

func TestExtractKey(t *testing.T) {
	c := testClient("https://cdn.example.com")

	key, ok := c.ExtractKey("https://cdn.example.com/uploads/a.jpg")
	if !ok || key != "uploads/a.jpg" {
		t.Errorf("CDN URL: got (%q, %v)", key, ok)
	}

	key, ok = c.ExtractKey("http://localhost:9000/images/uploads/b.png")
	if !ok || key != "uploads/b.png" {
		t.Errorf("path-style URL: got (%q, %v)", key, ok)
	}

	if _, ok := c.ExtractKey("https://elsewhere.example.com/x.jpg"); ok {
		t.Error("foreign URL should not match")
	}
}

func TestNewWithoutCredentials(t *testing.T) {
	c, err := New("", "auto", "", "", "images", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c != nil {
		t.Error("expected nil client when storage is unconfigured")
	}
}
