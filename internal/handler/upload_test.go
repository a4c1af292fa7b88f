package handler_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/msomdec/gallery-admin/internal/gallery"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{G: 180, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for name, data := range files {
		fw, err := mw.CreateFormFile("photos", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(data)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUpload_PublishesPhotos(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.client(t)

	body, contentType := multipartBody(t,
		map[string]string{"location": "Kyoto", "year": "2023", "tags": "temple, autumn"},
		map[string][]byte{"one.png": pngBytes(t, 40, 30), "two.png": pngBytes(t, 20, 20)},
	)
	req, _ := http.NewRequest(http.MethodPost, env.server.URL+"/admin/uploads", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("POST /admin/uploads: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp))
	}
	var out struct {
		Photos []struct {
			Photo struct {
				Src      string   `json:"src"`
				Location string   `json:"location"`
				Year     string   `json:"year"`
				Tags     []string `json:"tags"`
			} `json:"photo"`
		} `json:"photos"`
		Commit struct {
			Additions int `json:"additions"`
		} `json:"commit"`
	}
	decodeJSON(t, resp, &out)
	if len(out.Photos) != 2 || out.Commit.Additions != 2 {
		t.Fatalf("unexpected upload response: %+v", out)
	}
	for _, p := range out.Photos {
		if !strings.HasPrefix(p.Photo.Src, "images/photo_") || p.Photo.Location != "Kyoto" || p.Photo.Year != "2023" || len(p.Photo.Tags) != 2 {
			t.Errorf("uploaded photo = %+v", p.Photo)
		}
		if env.store.content(p.Photo.Src) == "" {
			t.Errorf("image %s not stored", p.Photo.Src)
		}
	}

	records := gallery.Decode(env.store.content("photos.html"))
	if len(records) != 5 || records[0].Location != "Kyoto" {
		t.Fatalf("gallery after upload = %+v", records)
	}
}

func TestUpload_RejectsNonImages(t *testing.T) {
	env := newTestEnv(t, nil)

	body, contentType := multipartBody(t, nil, map[string][]byte{"notes.txt": []byte("just text")})
	req, _ := http.NewRequest(http.MethodPost, env.server.URL+"/admin/uploads", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	resp, err := env.client(t).Do(req)
	if err != nil {
		t.Fatalf("POST /admin/uploads: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if records := gallery.Decode(env.store.content("photos.html")); len(records) != 3 {
		t.Fatalf("gallery changed: %d records", len(records))
	}
}

func TestUpload_RequiresFiles(t *testing.T) {
	env := newTestEnv(t, nil)

	body, contentType := multipartBody(t, map[string]string{"location": "Kyoto"}, nil)
	req, _ := http.NewRequest(http.MethodPost, env.server.URL+"/admin/uploads", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := env.client(t).Do(req)
	if err != nil {
		t.Fatalf("POST /admin/uploads: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
