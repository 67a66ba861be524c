package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/falco-social/falco/internal/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestQueryTimestamp(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"empty means no cursor", "", time.Time{}},
		{"unix milliseconds", "1715500000000", time.UnixMilli(1715500000000)},
		{"rfc3339", "2024-05-12T09:30:00Z", time.Date(2024, 5, 12, 9, 30, 0, 0, time.UTC)},
		{"garbage means no cursor", "yesterday", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := queryTimestamp(tt.raw); !got.Equal(tt.want) {
				t.Errorf("queryTimestamp(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestListOptions(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet,
		"/api/post?tags[]=go&tags[]=web&sort=popular&page=3&user_id=7&search=hello+world", nil)

	opts := listOptions(c)
	if len(opts.Tags) != 2 || opts.Tags[0] != "go" || opts.Tags[1] != "web" {
		t.Errorf("tags = %v", opts.Tags)
	}
	if opts.Sort != "popular" || opts.Page != 3 || opts.AuthorID != 7 {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Search != "hello world" {
		t.Errorf("search = %q", opts.Search)
	}
}

func TestQueryPage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"missing defaults to first page", "", 1},
		{"zero defaults to first page", "0", 1},
		{"negative defaults to first page", "-2", 1},
		{"garbage defaults to first page", "soon", 1},
		{"explicit page", "4", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "/api/post"
			if tt.raw != "" {
				url += "?page=" + tt.raw
			}
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, url, nil)
			if got := queryPage(c); got != tt.want {
				t.Errorf("queryPage(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestListOptionsDefaultsToFirstPage(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/post?sort=new", nil)

	if opts := listOptions(c); opts.Page != 1 {
		t.Errorf("page = %d, want 1 when the parameter is omitted", opts.Page)
	}
}

func TestListOptionsBareTagsKey(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/post?tags=go", nil)

	opts := listOptions(c)
	if len(opts.Tags) != 1 || opts.Tags[0] != "go" {
		t.Errorf("tags = %v", opts.Tags)
	}
}

func TestParamID(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  int64
		valid bool
	}{
		{"numeric", "42", 42, true},
		{"zero rejected", "0", 0, false},
		{"negative rejected", "-3", 0, false},
		{"non-numeric rejected", "abc", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Params = gin.Params{{Key: "id", Value: tt.raw}}

			id, ok := paramID(c)
			if ok != tt.valid || id != tt.want {
				t.Errorf("paramID(%q) = %d, %v", tt.raw, id, ok)
			}
			if !tt.valid && rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestViewerIDAnonymous(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if id := viewerID(c); id != 0 {
		t.Errorf("viewerID = %d, want 0", id)
	}
}

func TestRequireAuthRejectsBadTokens(t *testing.T) {
	tm := auth.NewTokenManager("secret", time.Hour, time.Hour)
	mw := &Middleware{tm: tm}

	engine := gin.New()
	engine.GET("/guarded", mw.RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestOptionalAuthLeavesInvalidTokensAnonymous(t *testing.T) {
	tm := auth.NewTokenManager("secret", time.Hour, time.Hour)
	mw := &Middleware{tm: tm}

	engine := gin.New()
	engine.GET("/open", mw.OptionalAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"viewer": viewerID(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); body != `{"viewer":0}` {
		t.Errorf("body = %s", body)
	}
}
