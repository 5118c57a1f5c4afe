package httpapi

import (
	"bytes"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/signalsfoundry/space-query/astro"
	"github.com/signalsfoundry/space-query/internal/auth"
	"github.com/signalsfoundry/space-query/query"
)

const (
	testUser     = "ops"
	testPassword = "correct horse battery staple"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	data, err := json.Marshal(map[string]string{testUser: string(hash)})
	if err != nil {
		t.Fatalf("marshal users: %v", err)
	}
	usersPath := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(usersPath, data, 0o600); err != nil {
		t.Fatalf("write users: %v", err)
	}
	users, err := auth.LoadUserStore(usersPath)
	if err != nil {
		t.Fatalf("LoadUserStore: %v", err)
	}

	keyring, err := auth.NewKeyring("space-query", time.Hour)
	if err != nil {
		t.Fatalf("NewKeyring: %v", err)
	}

	provider, err := query.New("astro", query.Options{})
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}

	api := NewAPI(nil, provider, users, keyring)
	srv := httptest.NewServer(NewRouter(api, RouterOptions{
		CORSOrigins: []string{"*"},
	}))
	t.Cleanup(srv.Close)
	return srv
}

func obtainToken(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	form := url.Values{"username": {testUser}, "password": {testPassword}}
	resp, err := http.PostForm(srv.URL+"/token", form)
	if err != nil {
		t.Fatalf("POST /token: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /token status = %d", resp.StatusCode)
	}
	var tok TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if tok.TokenType != "bearer" || tok.AccessToken == "" {
		t.Fatalf("unexpected token response: %+v", tok)
	}
	return tok.AccessToken
}

func postJSON(t *testing.T, srv *httptest.Server, token, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, srv.URL+path, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestLoginPage(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/login")
	if err != nil {
		t.Fatalf("GET /login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `action="/token"`) {
		t.Fatalf("login page missing token form: %s", body)
	}
}

func TestCheckNeedsNoAuth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/check")
	if err != nil {
		t.Fatalf("GET /check: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID header")
	}
}

func TestTokenRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)
	for _, form := range []url.Values{
		{"username": {testUser}, "password": {"wrong"}},
		{"username": {"ghost"}, "password": {testPassword}},
	} {
		resp, err := http.PostForm(srv.URL+"/token", form)
		if err != nil {
			t.Fatalf("POST /token: %v", err)
		}
		var envelope ErrorResponse
		decodeBody(t, resp, &envelope)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", resp.StatusCode)
		}
		if envelope.RespType != "error" {
			t.Fatalf("resp_type = %q", envelope.RespType)
		}
	}
}

func TestEndpointsRequireBearerToken(t *testing.T) {
	srv := newTestServer(t)
	body := PositionRequest{Ident: "q1", Body: "SUN", DT: time.Now().UTC()}

	resp := postJSON(t, srv, "", "/position", body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("no token: status = %d, want 403", resp.StatusCode)
	}

	resp = postJSON(t, srv, "not-a-token", "/position", body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("garbage token: status = %d, want 403", resp.StatusCode)
	}
}

func TestConvertSameFrameReturnsInput(t *testing.T) {
	srv := newTestServer(t)
	token := obtainToken(t, srv)

	resp := postJSON(t, srv, token, "/convert", map[string]any{
		"ident": "same-frame",
		"coords": map[string]any{
			"coord_type": "cartesian",
			"x":          7000.0, "y": -1200.0, "z": 300.0,
			"units": "km",
		},
		"original": "J2000",
		"new":      "J2K",
		"dt":       "2024-03-01T12:00:00Z",
	})
	var out ConversionResponse
	decodeBody(t, resp, &out)
	if resp.StatusCode != http.StatusOK || out.RespType != "data" {
		t.Fatalf("status = %d, resp_type = %q", resp.StatusCode, out.RespType)
	}
	if out.Ident != "same-frame" {
		t.Fatalf("ident = %q", out.Ident)
	}
	cart := out.Coordinates.Cartesian
	if cart == nil {
		t.Fatalf("expected cartesian result, got %+v", out.Coordinates)
	}
	if math.Abs(cart.X-7000) > 1e-6 || math.Abs(cart.Y+1200) > 1e-6 || math.Abs(cart.Z-300) > 1e-6 {
		t.Fatalf("same-frame transform changed the vector: %+v", cart)
	}
	if cart.Units != "km" {
		t.Fatalf("units = %q", cart.Units)
	}
}

func TestConvertSphericalRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	token := obtainToken(t, srv)
	dt := "2024-03-01T12:00:00Z"

	in := map[string]any{
		"coord_type": "spherical",
		"lat":        22.5, "lon": 140.0, "alt": 42164.0,
		"units": "km",
	}
	resp := postJSON(t, srv, token, "/convert", map[string]any{
		"ident": "fwd", "coords": in, "original": "J2000", "new": "ECLIPJ2000", "dt": dt,
	})
	var fwd ConversionResponse
	decodeBody(t, resp, &fwd)
	if fwd.RespType != "data" || fwd.Coordinates.Spherical == nil {
		t.Fatalf("forward transform: %+v", fwd)
	}

	resp = postJSON(t, srv, token, "/convert", map[string]any{
		"ident": "back", "coords": fwd.Coordinates.Spherical,
		"original": "ECLIPJ2000", "new": "J2000", "dt": dt,
	})
	var back ConversionResponse
	decodeBody(t, resp, &back)
	if back.RespType != "data" || back.Coordinates.Spherical == nil {
		t.Fatalf("return transform: %+v", back)
	}
	got := back.Coordinates.Spherical
	if math.Abs(got.Lat-22.5) > 1e-6 || math.Abs(got.Lon-140.0) > 1e-6 || math.Abs(got.Alt-42164.0) > 1e-3 {
		t.Fatalf("round trip diverged: %+v", got)
	}
}

func TestConvertUnknownFrameEnvelope(t *testing.T) {
	srv := newTestServer(t)
	token := obtainToken(t, srv)

	resp := postJSON(t, srv, token, "/convert", map[string]any{
		"ident": "bad-frame",
		"coords": map[string]any{
			"coord_type": "cartesian", "x": 1.0, "y": 2.0, "z": 3.0, "units": "km",
		},
		"original": "J2000",
		"new":      "MARS_FIXED_V2",
		"dt":       "2024-03-01T12:00:00Z",
	})
	var envelope ErrorResponse
	decodeBody(t, resp, &envelope)
	// Computational failures stay at 200 with a body-level envelope.
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if envelope.RespType != "error" || envelope.Ident != "bad-frame" {
		t.Fatalf("envelope = %+v", envelope)
	}
	if !strings.Contains(envelope.Error, "MARS_FIXED_V2") {
		t.Fatalf("error does not name the frame: %q", envelope.Error)
	}
}

func TestConvertMalformedPayload(t *testing.T) {
	srv := newTestServer(t)
	token := obtainToken(t, srv)

	for name, body := range map[string]map[string]any{
		"unknown coord_type": {
			"ident":    "m1",
			"coords":   map[string]any{"coord_type": "polar", "x": 1.0, "units": "km"},
			"original": "J2000", "new": "ECLIPJ2000", "dt": "2024-03-01T12:00:00Z",
		},
		"extra field": {
			"ident": "m2",
			"coords": map[string]any{
				"coord_type": "cartesian", "x": 1.0, "y": 2.0, "z": 3.0,
				"units": "km", "w": 4.0,
			},
			"original": "J2000", "new": "ECLIPJ2000", "dt": "2024-03-01T12:00:00Z",
		},
		"missing ident": {
			"coords": map[string]any{
				"coord_type": "cartesian", "x": 1.0, "y": 2.0, "z": 3.0, "units": "km",
			},
			"original": "J2000", "new": "ECLIPJ2000", "dt": "2024-03-01T12:00:00Z",
		},
	} {
		resp := postJSON(t, srv, token, "/convert", body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", name, resp.StatusCode)
		}
	}

	// A timestamp with no offset is rejected at decode.
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/convert", strings.NewReader(
		`{"ident":"m4","coords":{"coord_type":"cartesian","x":1,"y":2,"z":3,"units":"km"},`+
			`"original":"J2000","new":"ECLIPJ2000","dt":"2024-03-01T12:00:00"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /convert: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("naive timestamp: status = %d, want 400", resp.StatusCode)
	}
}

func TestPositionSun(t *testing.T) {
	srv := newTestServer(t)
	token := obtainToken(t, srv)

	resp := postJSON(t, srv, token, "/position", PositionRequest{
		Ident: "sun-now", Body: "SUN", DT: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	var out PositionResponse
	decodeBody(t, resp, &out)
	if resp.StatusCode != http.StatusOK || out.RespType != "data" {
		t.Fatalf("status = %d, resp_type = %q", resp.StatusCode, out.RespType)
	}
	if out.Position.Units != "km" {
		t.Fatalf("units = %q", out.Position.Units)
	}
	dist := math.Sqrt(out.Position.X*out.Position.X +
		out.Position.Y*out.Position.Y + out.Position.Z*out.Position.Z)
	if dist < 1.3e8 || dist > 1.6e8 {
		t.Fatalf("sun distance = %g km, want about 1 au", dist)
	}
}

func TestPositionUnknownBodyEnvelope(t *testing.T) {
	srv := newTestServer(t)
	token := obtainToken(t, srv)

	resp := postJSON(t, srv, token, "/position", PositionRequest{
		Ident: "q9", Body: "PLUTO-MOON-XYZ", DT: time.Now().UTC(),
	})
	var envelope ErrorResponse
	decodeBody(t, resp, &envelope)
	if resp.StatusCode != http.StatusOK || envelope.RespType != "error" {
		t.Fatalf("status = %d, envelope = %+v", resp.StatusCode, envelope)
	}
	if envelope.Ident != "q9" {
		t.Fatalf("ident = %q", envelope.Ident)
	}
}

func TestTerrestrialCelestialRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	token := obtainToken(t, srv)
	dt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	resp := postJSON(t, srv, token, "/terrestrial2celestial", TerrestrialRequest{
		Ident: "paris",
		Coords: SphericalCoords{
			CoordType: "spherical",
			Lat:       48.8566, Lon: 2.3522, Alt: 0.035,
			Units: "km",
		},
		DT: dt,
	})
	var fwd ConversionResponse
	decodeBody(t, resp, &fwd)
	if fwd.RespType != "data" || fwd.Coordinates.Cartesian == nil {
		t.Fatalf("terrestrial2celestial: %+v", fwd)
	}

	resp = postJSON(t, srv, token, "/celestial2terrestrial", CelestialRequest{
		Ident:  "paris-back",
		Coords: *fwd.Coordinates.Cartesian,
		DT:     dt,
	})
	var back ConversionResponse
	decodeBody(t, resp, &back)
	if back.RespType != "data" || back.Coordinates.Spherical == nil {
		t.Fatalf("celestial2terrestrial: %+v", back)
	}
	got := back.Coordinates.Spherical
	if math.Abs(got.Lat-48.8566) > 1e-6 || math.Abs(got.Lon-2.3522) > 1e-6 {
		t.Fatalf("round trip moved the site: %+v", got)
	}
	if math.Abs(got.Alt-0.035) > 1e-6 {
		t.Fatalf("altitude not preserved: %g", got.Alt)
	}
}
