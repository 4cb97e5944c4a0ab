package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/five82/galley/internal/recipe"
)

type fakeCreds struct {
	mu       sync.Mutex
	token    string
	rejected []string
}

func (f *fakeCreds) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeCreds) Rejected(issued string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected = append(f.rejected, issued)
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestParseBaseURL_DefaultsAndKeepsPrefix(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultBaseURL {
		t.Fatalf("default = %q, want %q", u.String(), defaultBaseURL)
	}

	u, err = parseBaseURL("example.com:1234/api/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != "http://example.com:1234/api" {
		t.Fatalf("url = %q, want http://example.com:1234/api", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatalf("parseBaseURL(http://) succeeded, want missing host error")
	}
}

func TestClient_ListAndGetRecipes(t *testing.T) {
	t.Parallel()

	var gotAuth, gotUserAgent, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUserAgent = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/recipes":
			_, _ = io.WriteString(w, `{"content":[{"id":1,"title":"Soup"},{"id":"2","title":"Bread"}]}`)
		case "/api/recipes/7":
			_, _ = io.WriteString(w, `{"id":7,"title":"Pie","author":"Ann"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL + "/api")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := testContext(t)

	items, err := c.ListRecipes(ctx)
	if err != nil {
		t.Fatalf("ListRecipes returned error: %v", err)
	}
	recipes := recipe.NormalizeAll(items)
	if len(recipes) != 2 || recipes[0].ID != "1" || recipes[1].Title != "Bread" {
		t.Fatalf("recipes = %#v, want Soup and Bread", recipes)
	}
	if gotAuth != "" {
		t.Fatalf("anonymous client sent Authorization %q", gotAuth)
	}
	if gotUserAgent != defaultUserAgent {
		t.Fatalf("User-Agent = %q, want %q", gotUserAgent, defaultUserAgent)
	}
	if gotRequestID == "" {
		t.Fatalf("X-Request-ID missing")
	}

	one, err := c.GetRecipe(ctx, "7")
	if err != nil {
		t.Fatalf("GetRecipe returned error: %v", err)
	}
	if got := recipe.Normalize(one); got.Title != "Pie" || got.AuthorName != "Ann" {
		t.Fatalf("GetRecipe = %#v, want Pie by Ann", got)
	}

	_, err = c.GetRecipe(ctx, "missing")
	if !IsNotFound(err) {
		t.Fatalf("GetRecipe(missing) err = %v, want not found", err)
	}
}

func TestClient_BearerAndRejectedWithIssuedToken(t *testing.T) {
	t.Parallel()

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"token expired"}`)
	}))
	t.Cleanup(server.Close)

	base, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	creds := &fakeCreds{token: "tok-1"}
	c := base.WithCredentials(creds)

	err = c.DeleteRecipe(testContext(t), "3")
	if !IsUnauthorized(err) {
		t.Fatalf("DeleteRecipe err = %v, want unauthorized", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("Authorization = %q, want Bearer tok-1", gotAuth)
	}
	if len(creds.rejected) != 1 || creds.rejected[0] != "tok-1" {
		t.Fatalf("rejected = %v, want [tok-1]", creds.rejected)
	}
	if got := Message(err, "fallback"); got != "token expired" {
		t.Fatalf("Message = %q, want backend message", got)
	}
	if base.creds != nil {
		t.Fatalf("WithCredentials mutated the anonymous client")
	}
}

func TestClient_LoginAndRegister(t *testing.T) {
	t.Parallel()

	var registered Registration
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		switch r.URL.Path {
		case "/users/login":
			var body Registration
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.Password != "pw" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"message":"Invalid credentials"}`)
				return
			}
			_ = json.NewEncoder(w).Encode(LoginResponse{Token: "jwt", Name: "Ann", Email: body.Email})
		case "/users/register":
			_ = json.NewDecoder(r.Body).Decode(&registered)
			w.WriteHeader(http.StatusCreated)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := testContext(t)

	resp, err := c.Login(ctx, "ann@example.com", "pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if resp.Token != "jwt" || resp.Email != "ann@example.com" {
		t.Fatalf("Login = %#v", resp)
	}

	_, err = c.Login(ctx, "ann@example.com", "bad")
	if got := Message(err, "Authentication failed"); got != "Invalid credentials" {
		t.Fatalf("Message = %q, want Invalid credentials", got)
	}

	if err := c.Register(ctx, Registration{Name: "Bo", Email: "bo@example.com", Password: "x"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if registered.Name != "Bo" || registered.Email != "bo@example.com" {
		t.Fatalf("registered = %#v", registered)
	}
}

func TestClient_FetchPhotoEscapesName(t *testing.T) {
	t.Parallel()

	var gotRawPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRawPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "image/png")
		_, _ = io.WriteString(w, "png")
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL + "/api")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	data, contentType, err := c.FetchPhoto(testContext(t), "my pic.png")
	if err != nil {
		t.Fatalf("FetchPhoto returned error: %v", err)
	}
	if string(data) != "png" || contentType != "image/png" {
		t.Fatalf("FetchPhoto = %q, %q", data, contentType)
	}
	if gotRawPath != "/api/recipes/photo/my%20pic.png" {
		t.Fatalf("path = %q, want escaped photo name", gotRawPath)
	}
}

func readForm(t *testing.T, r *http.Request) *multipart.Form {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		t.Errorf("content type = %q, want multipart/form-data", r.Header.Get("Content-Type"))
		return &multipart.Form{}
	}
	form, err := multipart.NewReader(r.Body, params["boundary"]).ReadForm(1 << 20)
	if err != nil {
		t.Errorf("ReadForm: %v", err)
		return &multipart.Form{}
	}
	return form
}

func TestClient_SubmitEncodesPhotoIntent(t *testing.T) {
	cases := []struct {
		name      string
		method    string
		intent    recipe.PhotoIntent
		wantURL   []string
		wantFile  bool
		wantPrep  string
		prepInput int
	}{
		{name: "keep", intent: recipe.KeepPhoto{}, wantURL: nil},
		{name: "upload", intent: recipe.UploadPhoto{Name: "a.png", ContentType: "image/png", Data: []byte("img")}, wantFile: true},
		{name: "link", intent: recipe.LinkPhoto{URL: "https://x/y.jpg"}, wantURL: []string{"https://x/y.jpg"}},
		{name: "clear", intent: recipe.ClearPhoto{}, wantURL: []string{""}, prepInput: 25, wantPrep: "25"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var form *multipart.Form
			var method string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				method = r.Method
				form = readForm(t, r)
				_, _ = io.WriteString(w, `{"id":9,"title":"Stew"}`)
			}))
			t.Cleanup(server.Close)

			c, err := NewClient(server.URL)
			if err != nil {
				t.Fatalf("NewClient returned error: %v", err)
			}
			sub := recipe.Submission{
				Title:           " Stew ",
				IngredientMd:    "- beef",
				PrepTimeMinutes: tc.prepInput,
				Tags:            []string{"DINNER", "QUICK"},
				Photo:           tc.intent,
			}
			got, err := c.UpdateRecipe(testContext(t), "9", sub)
			if err != nil {
				t.Fatalf("UpdateRecipe returned error: %v", err)
			}
			if recipe.Normalize(got).ID != "9" {
				t.Fatalf("UpdateRecipe echo = %#v", got)
			}
			if method != http.MethodPut {
				t.Fatalf("method = %s, want PUT", method)
			}
			if v := form.Value["title"]; len(v) != 1 || v[0] != "Stew" {
				t.Fatalf("title = %v, want [Stew]", v)
			}
			if _, ok := form.Value["description"]; ok {
				t.Fatalf("empty description was sent")
			}
			if v := form.Value["tags"]; len(v) != 1 || v[0] != `["DINNER","QUICK"]` {
				t.Fatalf("tags = %v, want JSON array", v)
			}
			prep := form.Value["prepTimeMinutes"]
			if tc.wantPrep == "" && len(prep) != 0 || tc.wantPrep != "" && (len(prep) != 1 || prep[0] != tc.wantPrep) {
				t.Fatalf("prepTimeMinutes = %v, want %q", prep, tc.wantPrep)
			}
			if got := form.Value["photoUrl"]; strings.Join(got, ",") != strings.Join(tc.wantURL, ",") || len(got) != len(tc.wantURL) {
				t.Fatalf("photoUrl = %v, want %v", got, tc.wantURL)
			}
			files := form.File["photo"]
			if tc.wantFile != (len(files) == 1) {
				t.Fatalf("photo parts = %d, want file=%v", len(files), tc.wantFile)
			}
			if tc.wantFile && files[0].Filename != "a.png" {
				t.Fatalf("filename = %q, want a.png", files[0].Filename)
			}
		})
	}
}

func TestClient_NetworkErrorIsWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	c, err := NewClient(url)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.ListRecipes(testContext(t))
	if err == nil || !strings.Contains(err.Error(), "execute request") {
		t.Fatalf("err = %v, want execute request error", err)
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		t.Fatalf("network error reported as API error")
	}
	if Message(err, "Failed to load recipes") != "Failed to load recipes" {
		t.Fatalf("Message did not fall back")
	}
}
