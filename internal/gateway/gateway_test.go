package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FBK-Manuel/wearehfg/internal/domain"
	"github.com/FBK-Manuel/wearehfg/pkg/httpclient"
)

// ============================================================================
// Helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig(baseURL string) Config {
	cfg := DefaultConfig(baseURL)
	cfg.HTTP.RetryWaitMin = time.Millisecond
	cfg.HTTP.RetryWaitMax = 2 * time.Millisecond
	cfg.QueryRetries = 2
	return cfg
}

type backend struct {
	*httptest.Server
	hits atomic.Int32
	last atomic.Pointer[http.Request]
}

// newBackend serves every request with h and records the last request.
func newBackend(t *testing.T, h http.HandlerFunc) *backend {
	t.Helper()
	b := &backend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			_ = r.ParseForm()
		}
		b.last.Store(r)
		h(w, r)
	}))
	t.Cleanup(b.Close)
	return b
}

func reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func newTestGateway(b *backend, tokens TokenSource) *Gateway {
	return NewWithHTTPClient(testConfig(b.URL), b.Client(), tokens, testLogger())
}

func staticToken(tok string) TokenSource {
	return TokenFunc(func(context.Context) string { return tok })
}

// ============================================================================
// Catalog reads
// ============================================================================

func TestLatestProducts_Maps(t *testing.T) {
	b := newBackend(t, reply(http.StatusOK, `{"success":true,"message":[
		{"id":"7","title":"Grace Hoodie","price":"45.00","image":"g.png","sizes":["M","L"],"colors":["Black"]},
		{"id":8,"title":"Faith Tee","price":20,"image":"f.png"}
	]}`))
	g := newTestGateway(b, nil)

	res := g.LatestProducts(context.Background(), 10, 0)
	require.True(t, res.OK(), res.Err())
	items := res.Value()
	require.Len(t, items, 2)
	assert.Equal(t, domain.Product{
		ID: 7, Name: "Grace Hoodie", Price: "45.00", Image: "g.png",
		Sizes: []string{"M", "L"}, Colors: []string{"Black"}, Category: "Uncategorized",
	}, items[0])
	assert.Equal(t, "20", items[1].Price)
	assert.Equal(t, []string{"S", "M", "L", "XL", "2XL", "3XL"}, items[1].Sizes)
	assert.Len(t, items[1].Colors, 11)

	req := b.last.Load()
	assert.Equal(t, "/latestProducts.php", req.URL.Path)
	assert.Equal(t, "10", req.URL.Query().Get("limit"))
	assert.Equal(t, "0", req.URL.Query().Get("offset"))
}

func TestProducts_CategoryPrecedence(t *testing.T) {
	b := newBackend(t, reply(http.StatusOK, `{"message":[
		{"id":1,"title":"A","price":"10","category":"Hoodie","filter_category":"Kid Sets Unisex"},
		{"id":2,"title":"B","price":"12","category":"T-Shirt"},
		{"id":3,"title":"C"}
	]}`))
	res := newTestGateway(b, nil).Products(context.Background())
	require.True(t, res.OK())
	items := res.Value()
	assert.Equal(t, "Kid Sets Unisex", items[0].Category)
	assert.Equal(t, "T-Shirt", items[1].Category)
	assert.Equal(t, "Uncategorized", items[2].Category)
	assert.Equal(t, "0", items[2].Price)
}

func TestProducts_NonListMessageIsEmpty(t *testing.T) {
	b := newBackend(t, reply(http.StatusOK, `{"success":true,"message":"no products yet"}`))
	res := newTestGateway(b, nil).Products(context.Background())
	require.True(t, res.OK())
	assert.Empty(t, res.Value())
}

func TestLatestProducts_NetworkErrorIsTransport(t *testing.T) {
	b := newBackend(t, reply(http.StatusOK, `{}`))
	g := newTestGateway(b, nil)
	b.Close()

	res := g.LatestProducts(context.Background(), 10, 0)
	assert.Equal(t, KindTransportError, res.Kind())
	assert.Equal(t, GenericTransportMessage, res.Message())
}

func TestGrid(t *testing.T) {
	t.Run("formats teaser prices", func(t *testing.T) {
		b := newBackend(t, reply(http.StatusOK, `{"success":true,"message":[{"id":4,"title":"Cap","price":"15.50","image":"c.png"}]}`))
		res := newTestGateway(b, nil).Grid(context.Background(), domain.GridTopRated, 3)
		require.True(t, res.OK())
		assert.Equal(t, []domain.Teaser{{ID: 4, Name: "Cap", Price: "$15.50", Image: "c.png"}}, res.Value())
		q := b.last.Load().URL.Query()
		assert.Equal(t, "topRated", q.Get("section"))
		assert.Equal(t, "3", q.Get("limit"))
	})

	t.Run("requires explicit success", func(t *testing.T) {
		b := newBackend(t, reply(http.StatusOK, `{"message":[{"id":4}]}`))
		res := newTestGateway(b, nil).Grid(context.Background(), domain.GridTopRated, 3)
		assert.Equal(t, KindTransportError, res.Kind())
	})

	t.Run("requires a list", func(t *testing.T) {
		b := newBackend(t, reply(http.StatusOK, `{"success":true,"message":"none"}`))
		res := newTestGateway(b, nil).Grid(context.Background(), domain.GridBestSelling, 3)
		assert.Equal(t, KindTransportError, res.Kind())
	})
}

func TestProductDetail(t *testing.T) {
	t.Run("maps first record", func(t *testing.T) {
		b := newBackend(t, reply(http.StatusOK, `{"message":[{
			"product_id":"12","product_name":"Grace Hoodie","product_price":"59.99",
			"product_description":"Warm","availability":"In Stock","weights":["0.5kg","1kg"],
			"sizes":["S"],"colors":["Red"],"product_images":["a.png"],"product_information":"Cotton"
		}]}`))
		res := newTestGateway(b, nil).ProductDetail(context.Background(), 12)
		require.True(t, res.OK())
		d := res.Value()
		assert.Equal(t, "/products.php/12", b.last.Load().URL.Path)
		assert.Equal(t, int64(12), d.ID)
		assert.True(t, decimal.RequireFromString("59.99").Equal(d.Price))
		assert.Equal(t, "0.5kg", d.Weight)
		assert.Equal(t, "free shipping", d.Shipping)
		assert.Equal(t, []string{"Warm"}, d.Tabs.Description)
		assert.Equal(t, []string{"Cotton"}, d.Tabs.Information)
	})

	t.Run("defaults missing fields", func(t *testing.T) {
		b := newBackend(t, reply(http.StatusOK, `{"message":[{"product_id":3,"product_name":"Tee","product_price":"abc","shipping":"express"}]}`))
		res := newTestGateway(b, nil).ProductDetail(context.Background(), 3)
		require.True(t, res.OK())
		d := res.Value()
		assert.True(t, d.Price.IsZero())
		assert.Equal(t, "N/A", d.Weight)
		assert.Equal(t, "express", d.Shipping)
		assert.Equal(t, []string{}, d.Sizes)
		assert.Equal(t, []string{"No description available"}, d.Tabs.Description)
		assert.Equal(t, []string{"No info available"}, d.Tabs.Information)
	})

	t.Run("empty list is an app error", func(t *testing.T) {
		b := newBackend(t, reply(http.StatusOK, `{"message":[]}`))
		res := newTestGateway(b, nil).ProductDetail(context.Background(), 99)
		assert.Equal(t, KindAppError, res.Kind())
	})
}

// ============================================================================
// Search
// ============================================================================

func TestSearch_BareArray(t *testing.T) {
	b := newBackend(t, reply(http.StatusOK, `[{"id":5,"title":"Hoodie","price":"30","image":"h.png","category":"Hoodie"}]`))
	res := newTestGateway(b, nil).Search(context.Background(), "Hoodie", "  hood ")
	require.True(t, res.OK())
	assert.Equal(t, []domain.SearchHit{{ID: 5, Name: "Hoodie", Price: "30", Image: "h.png", Category: "Hoodie"}}, res.Value())

	q := b.last.Load().URL.Query()
	assert.Equal(t, "Hoodie", q.Get("category"))
	assert.Equal(t, "hood", q.Get("search"))
}

func TestSearch_AllCategoriesOmitsCategory(t *testing.T) {
	b := newBackend(t, reply(http.StatusOK, `[]`))
	res := newTestGateway(b, nil).Search(context.Background(), AllCategories, "tee")
	require.True(t, res.OK())
	q := b.last.Load().URL.Query()
	assert.False(t, q.Has("category"))
	assert.Equal(t, "tee", q.Get("search"))
}

func TestSearch_CategoryOnly(t *testing.T) {
	b := newBackend(t, reply(http.StatusOK, `[]`))
	res := newTestGateway(b, nil).Search(context.Background(), "Accessories", "   ")
	require.True(t, res.OK())
	q := b.last.Load().URL.Query()
	assert.Equal(t, "Accessories", q.Get("category"))
	assert.False(t, q.Has("search"))
}

func TestSearch_NothingToSearchSkipsRequest(t *testing.T) {
	b := newBackend(t, reply(http.StatusOK, `[]`))
	g := newTestGateway(b, nil)
	for _, category := range []string{AllCategories, ""} {
		res := g.Search(context.Background(), category, " ")
		require.True(t, res.OK())
		assert.NotNil(t, res.Value())
		assert.Empty(t, res.Value())
	}
	assert.Zero(t, b.hits.Load())
}

// ============================================================================
// Auth and forms
// ============================================================================

func TestLogin_StoresIdentity(t *testing.T) {
	b := newBackend(t, reply(http.StatusOK, `{"success":true,"message":"Welcome back","userinfo":{"token":"tok-1","user":{"name":"Ada","email":"ada@example.com","userId":42}}}`))
	g := newTestGateway(b, staticToken("should-not-be-sent"))

	res := g.Login(context.Background(), domain.LoginForm{Email: "ada@example.com", Password: "hunter22"})
	require.True(t, res.OK(), res.Err())
	assert.Equal(t, domain.LoginResult{
		Message:  "Welcome back",
		Identity: domain.Identity{Token: "tok-1", Name: "Ada", Email: "ada@example.com", UserID: "42"},
	}, res.Value())

	req := b.last.Load()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/login.php", req.URL.Path)
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestLogin_Refused(t *testing.T) {
	b := newBackend(t, reply(http.StatusUnauthorized, `{"error":true,"message":"Invalid email or password"}`))
	res := newTestGateway(b, nil).Login(context.Background(), domain.LoginForm{Email: "a@b.co", Password: "12345678"})
	assert.Equal(t, KindAppError, res.Kind())
	assert.Equal(t, "Invalid email or password", res.Message())
}

func TestLogin_SuccessWithoutTokenIsRefusal(t *testing.T) {
	b := newBackend(t, reply(http.StatusOK, `{"success":true,"message":"Welcome back"}`))
	res := newTestGateway(b, nil).Login(context.Background(), domain.LoginForm{Email: "a@b.co", Password: "12345678"})
	assert.Equal(t, KindAppError, res.Kind())
	assert.Equal(t, "Login failed", res.Message())
}

func TestAuthenticatedClient_BearerHeader(t *testing.T) {
	b := newBackend(t, reply(http.StatusOK, `{"success":true,"message":"Subscribed"}`))

	res := newTestGateway(b, staticToken("tok-9")).Newsletter(context.Background(), domain.NewsletterForm{Email: "a@b.co"})
	require.True(t, res.OK())
	assert.Equal(t, "Bearer tok-9", b.last.Load().Header.Get("Authorization"))

	res = newTestGateway(b, staticToken("")).Newsletter(context.Background(), domain.NewsletterForm{Email: "a@b.co"})
	require.True(t, res.OK())
	assert.Empty(t, b.last.Load().Header.Get("Authorization"))
}

func TestChangePassword_SendsTokenAndPasswordOnly(t *testing.T) {
	var body string
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		reply(http.StatusOK, `{"success":true,"message":"Password changed"}`)(w, r)
	})
	res := newTestGateway(b, nil).ChangePassword(context.Background(), domain.ChangePasswordForm{
		Token: "reset-1", Password: "newpassword", ConfirmPassword: "newpassword",
	})
	require.True(t, res.OK())
	assert.Equal(t, "/completeChangePassword.php", b.last.Load().URL.Path)
	assert.JSONEq(t, `{"token":"reset-1","password":"newpassword"}`, body)
}

func TestTestimony_Multipart(t *testing.T) {
	b := newBackend(t, reply(http.StatusOK, `{"success":true,"message":"Thank you","sub_message":"Your testimony was received"}`))
	form := domain.TestimonyForm{
		FirstName: "Ada", LastName: "Obi", Birthdate: "1990-01-01", Phone: "08012345678",
		Address: "1 Church Rd", Email: "ada@example.com", Testimony: "He healed me",
	}
	res := newTestGateway(b, nil).Testimony(context.Background(), form)
	require.True(t, res.OK())
	assert.Equal(t, domain.SubmitResult{Message: "Thank you", SubMessage: "Your testimony was received"}, res.Value())

	req := b.last.Load()
	require.NotNil(t, req.MultipartForm)
	assert.Equal(t, []string{"Ada"}, req.MultipartForm.Value["firstName"])
	assert.Equal(t, []string{"He healed me"}, req.MultipartForm.Value["testimony"])
}

func TestSubmit_RejectionCarriesMessage(t *testing.T) {
	b := newBackend(t, reply(http.StatusOK, `{"success":false,"message":"Already subscribed"}`))
	res := newTestGateway(b, nil).Newsletter(context.Background(), domain.NewsletterForm{Email: "a@b.co"})
	assert.Equal(t, KindAppError, res.Kind())
	assert.Equal(t, "Already subscribed", res.Message())
}

// ============================================================================
// Video
// ============================================================================

func TestHeroVideo(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		b := newBackend(t, reply(http.StatusOK, `{"status":200,"youtube_link":"https://youtu.be/dQw4w9WgXcQ"}`))
		res := newTestGateway(b, nil).HeroVideo(context.Background())
		require.True(t, res.OK())
		assert.Equal(t, "dQw4w9WgXcQ", res.Value().VideoID)
	})

	t.Run("non 200 status", func(t *testing.T) {
		b := newBackend(t, reply(http.StatusOK, `{"status":404,"message":"No video"}`))
		res := newTestGateway(b, nil).HeroVideo(context.Background())
		assert.Equal(t, KindAppError, res.Kind())
		assert.Equal(t, "No video", res.Message())
	})

	t.Run("unrecognised link", func(t *testing.T) {
		b := newBackend(t, reply(http.StatusOK, `{"status":"200","youtube_link":"https://vimeo.com/1"}`))
		res := newTestGateway(b, nil).HeroVideo(context.Background())
		assert.Equal(t, KindAppError, res.Kind())
	})
}

// ============================================================================
// Retry policies and breaker
// ============================================================================

func TestRetryPolicies(t *testing.T) {
	tests := []struct {
		name     string
		call     func(g *Gateway)
		attempts int32
	}{
		{"latest retries per query budget", func(g *Gateway) { g.LatestProducts(context.Background(), 10, 0) }, 3},
		{"catalog retries once", func(g *Gateway) { g.Products(context.Background()) }, 2},
		{"deals retry once", func(g *Gateway) { g.TodayDeals(context.Background(), 8, 0) }, 2},
		{"grid never retries", func(g *Gateway) { g.Grid(context.Background(), domain.GridNewArrival, 3) }, 1},
		{"posts never retry", func(g *Gateway) { g.Contact(context.Background(), domain.ContactForm{}) }, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t, reply(http.StatusServiceUnavailable, "unavailable"))
			tt.call(newTestGateway(b, nil))
			assert.Equal(t, tt.attempts, b.hits.Load())
		})
	}
}

func TestBreaker_SharedAcrossPolicies(t *testing.T) {
	b := newBackend(t, reply(http.StatusBadGateway, "bad gateway"))
	cfg := testConfig(b.URL)
	cfg.BreakerEnabled = true
	cfg.Breaker = httpclient.CircuitBreakerConfig{
		Name: "gateway-test", MaxRequests: 1, Timeout: time.Minute, FailureRatio: 0.5, MinRequests: 2,
	}
	g := NewWithHTTPClient(cfg, b.Client(), nil, testLogger())

	for range 2 {
		res := g.Grid(context.Background(), domain.GridBestSelling, 3)
		require.Equal(t, KindTransportError, res.Kind())
	}
	require.Equal(t, int32(2), b.hits.Load())

	res := g.Products(context.Background())
	assert.Equal(t, KindTransportError, res.Kind())
	assert.True(t, errors.Is(res.Err(), httpclient.ErrCircuitOpen))
	assert.Equal(t, int32(2), b.hits.Load())
}
