// Package httpapi exposes the transform core over an authenticated HTTP
// API: token issuance against the on-disk user store, bearer-token checks,
// and the conversion and body-position endpoints. Computational failures are
// reported in a body-level error envelope that preserves the request ident;
// transport-level status codes are reserved for malformed requests and
// failed authentication.
package httpapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/space-query/coords"
	"github.com/signalsfoundry/space-query/internal/auth"
	"github.com/signalsfoundry/space-query/internal/logging"
	"github.com/signalsfoundry/space-query/query"
)

// API bundles the handlers' shared collaborators.
type API struct {
	log      logging.Logger
	provider query.Provider
	frames   *coords.FrameRegistry
	users    *auth.UserStore
	keyring  *auth.Keyring
	validate *validator.Validate
}

// NewAPI constructs the handler set around a transform provider and the
// authentication collaborators.
func NewAPI(log logging.Logger, provider query.Provider, users *auth.UserStore, keyring *auth.Keyring) *API {
	if log == nil {
		log = logging.Noop()
	}
	return &API{
		log:      log,
		provider: provider,
		frames:   coords.DefaultFrameRegistry(),
		users:    users,
		keyring:  keyring,
		validate: validator.New(),
	}
}

const loginForm = `<form method="POST" action="/token">
    <label for="username">Username/Email:</label>
    <input id="username" type="text" name="username"/><br/>
    <label for="password">Password:</label>
    <input id="password" type="password" name="password"/><br/>
    <input type="submit" value="Submit"/>
</form>
`

// Login serves a minimal password form posting to /token.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, loginForm)
}

// Token implements the OAuth2 password flow: form-encoded credentials in,
// bearer token out. Bad credentials get a uniform 403 regardless of whether
// the username exists.
func (a *API) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.writeError(w, r, http.StatusBadRequest, "", "malformed form body")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if err := a.users.Authenticate(username, password); err != nil {
		a.log.Warn(r.Context(), "login rejected", logging.String("user", username))
		a.writeError(w, r, http.StatusForbidden, "", "invalid credentials")
		return
	}

	token, _, err := a.keyring.Issue(username)
	if err != nil {
		a.log.Error(r.Context(), "token issuance failed", logging.Err(err))
		a.writeError(w, r, http.StatusInternalServerError, "", "token issuance failed")
		return
	}
	a.writeJSON(w, r, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Check is the unauthenticated liveness endpoint.
func (a *API) Check(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Convert transforms a position between two named frames at an instant.
func (a *API) Convert(w http.ResponseWriter, r *http.Request) {
	var req ConversionRequest
	if !a.decode(w, r, &req) {
		return
	}

	from, err := a.frames.Resolve(req.Original)
	if err != nil {
		a.writeEnvelope(w, r, req.Ident, err)
		return
	}
	to, err := a.frames.Resolve(req.New)
	if err != nil {
		a.writeEnvelope(w, r, req.Ident, err)
		return
	}
	pos, err := req.Coords.Position(from)
	if err != nil {
		a.writeError(w, r, http.StatusBadRequest, req.Ident, err.Error())
		return
	}

	ctx, span := startProviderSpan(r.Context(), "Transform",
		attribute.String("frame.from", from.String()),
		attribute.String("frame.to", to.String()))
	out, err := a.provider.Transform(ctx, pos, from, to, req.DT)
	endProviderSpan(span, err)
	if err != nil {
		a.writeEnvelope(w, r, req.Ident, err)
		return
	}
	payload, err := payloadFromPosition(out)
	if err != nil {
		a.writeEnvelope(w, r, req.Ident, err)
		return
	}
	a.writeJSON(w, r, http.StatusOK, ConversionResponse{
		RespType:    "data",
		Ident:       req.Ident,
		Coordinates: payload,
	})
}

// TerrestrialToCelestial converts an Earth-fixed surface position into
// ecliptic-celestial cartesian coordinates.
func (a *API) TerrestrialToCelestial(w http.ResponseWriter, r *http.Request) {
	var req TerrestrialRequest
	if !a.decode(w, r, &req) {
		return
	}
	lla, err := req.Coords.LatLonAlt()
	if err != nil {
		a.writeError(w, r, http.StatusBadRequest, req.Ident, err.Error())
		return
	}

	ctx, span := startProviderSpan(r.Context(), "TerrestrialToCelestial")
	vec, err := query.TerrestrialToCelestial(ctx, a.provider, lla, req.DT)
	endProviderSpan(span, err)
	if err != nil {
		a.writeEnvelope(w, r, req.Ident, err)
		return
	}
	cart, err := cartesianPayload(vec)
	if err != nil {
		a.writeEnvelope(w, r, req.Ident, err)
		return
	}
	a.writeJSON(w, r, http.StatusOK, ConversionResponse{
		RespType:    "data",
		Ident:       req.Ident,
		Coordinates: CoordsPayload{Cartesian: &cart},
	})
}

// CelestialToTerrestrial converts an ecliptic-celestial cartesian position
// into an Earth-fixed surface position.
func (a *API) CelestialToTerrestrial(w http.ResponseWriter, r *http.Request) {
	var req CelestialRequest
	if !a.decode(w, r, &req) {
		return
	}
	vec, err := req.Coords.Position()
	if err != nil {
		a.writeError(w, r, http.StatusBadRequest, req.Ident, err.Error())
		return
	}

	ctx, span := startProviderSpan(r.Context(), "CelestialToTerrestrial")
	lla, err := query.CelestialToTerrestrial(ctx, a.provider, vec, req.DT)
	endProviderSpan(span, err)
	if err != nil {
		a.writeEnvelope(w, r, req.Ident, err)
		return
	}
	payload, err := payloadFromPosition(lla)
	if err != nil {
		a.writeEnvelope(w, r, req.Ident, err)
		return
	}
	a.writeJSON(w, r, http.StatusOK, ConversionResponse{
		RespType:    "data",
		Ident:       req.Ident,
		Coordinates: payload,
	})
}

// Position reports where a named solar-system body is relative to Earth, in
// ecliptic-celestial cartesian coordinates.
func (a *API) Position(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if !a.decode(w, r, &req) {
		return
	}

	ctx, span := startProviderSpan(r.Context(), "CelestialPosition",
		attribute.String("body", req.Body))
	vec, err := a.provider.CelestialPosition(ctx, req.Body, req.DT)
	endProviderSpan(span, err)
	if err != nil {
		a.writeEnvelope(w, r, req.Ident, err)
		return
	}
	cart, err := cartesianPayload(vec)
	if err != nil {
		a.writeEnvelope(w, r, req.Ident, err)
		return
	}
	a.writeJSON(w, r, http.StatusOK, PositionResponse{
		RespType: "data",
		Ident:    req.Ident,
		Position: cart,
	})
}

// decode reads, strictly parses, and validates a JSON request body. On
// failure it writes a 400 and returns false.
func (a *API) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		a.writeError(w, r, http.StatusBadRequest, "", "malformed request: "+err.Error())
		return false
	}
	if err := a.validate.Struct(v); err != nil {
		a.writeError(w, r, http.StatusBadRequest, "", "invalid request: "+err.Error())
		return false
	}
	return true
}

// writeEnvelope reports a computational failure inside a 200 response so the
// caller can correlate it with the request ident. Transport stays healthy;
// only the payload carries the error.
func (a *API) writeEnvelope(w http.ResponseWriter, r *http.Request, ident string, err error) {
	a.log.Error(r.Context(), "request failed",
		logging.String("ident", ident), logging.Err(err))
	a.writeJSON(w, r, http.StatusOK, ErrorResponse{
		RespType: "error",
		Ident:    ident,
		Error:    err.Error(),
	})
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, status int, ident, msg string) {
	a.writeJSON(w, r, status, ErrorResponse{
		RespType: "error",
		Ident:    ident,
		Error:    msg,
	})
}

func (a *API) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Error(r.Context(), "response encoding failed", logging.Err(err))
	}
}
