package main

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/nikolalohinski/gonja/v2/exec"
	"go.uber.org/zap"

	"minicms/internal/view"
)

// --- Session helpers ---

const (
	sessionName = "session"

	keyUsername = "username"
	keyLabel    = "label"
	keySearch   = "search"
)

func newCookieStore(secret string, log *zap.Logger) *sessions.CookieStore {
	key := []byte(secret)
	if secret == "" {
		log.Warn("no session secret configured, cookies will not survive a restart")
		key = securecookie.GenerateRandomKey(32)
	}
	s := sessions.NewCookieStore(key)
	s.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return s
}

// session returns the visitor's cookie session. An undecodable cookie yields
// a fresh session.
func (a *app) session(r *http.Request) *sessions.Session {
	sess, err := a.cookies.Get(r, sessionName)
	if err != nil {
		a.log.Debug("discarding unreadable session cookie", zap.Error(err))
	}
	return sess
}

func stringValue(sess *sessions.Session, key string) string {
	s, _ := sess.Values[key].(string)
	return s
}

// currentUser is the visitor's username, or "" when anonymous. The browser
// cookie wins; otherwise the remembered session file is trusted as is.
func (a *app) currentUser(sess *sessions.Session) (string, error) {
	if u := stringValue(sess, keyUsername); u != "" {
		return u, nil
	}
	remembered, ok, err := a.sessions.Load()
	if err != nil || !ok {
		return "", err
	}
	return remembered.Username, nil
}

func viewState(sess *sessions.Session) view.State {
	return view.State{
		SelectedLabel: stringValue(sess, keyLabel),
		SearchText:    stringValue(sess, keySearch),
	}
}

func putViewState(sess *sessions.Session, st view.State) {
	sess.Values[keyLabel] = st.SelectedLabel
	sess.Values[keySearch] = st.SearchText
}

func addFlash(sess *sessions.Session, kind, message string) {
	sess.AddFlash(message, kind)
}

func takeFlashes(sess *sessions.Session) []flash {
	var out []flash
	for _, kind := range []string{flashError, flashSuccess} {
		for _, f := range sess.Flashes(kind) {
			if msg, ok := f.(string); ok {
				out = append(out, flash{Kind: kind, Message: msg})
			}
		}
	}
	return out
}

// redirect saves the cookie session and sends the browser to path, which
// triggers the next full render.
func (a *app) redirect(w http.ResponseWriter, r *http.Request, sess *sessions.Session, path string) {
	if err := sess.Save(r, w); err != nil {
		a.fail(w, r, err)
		return
	}
	http.Redirect(w, r, path, http.StatusFound)
}

func (a *app) fail(w http.ResponseWriter, r *http.Request, err error) {
	a.log.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// --- Template helpers ---

func (a *app) renderPage(w http.ResponseWriter, r *http.Request, sess *sessions.Session, page view.Page, login loginForm, status int) {
	data := exec.NewContext(map[string]interface{}{
		"page":    page,
		"login":   login,
		"flashes": takeFlashes(sess),
	})

	var buf bytes.Buffer
	if err := a.tmpl.Execute(&buf, data); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := sess.Save(r, w); err != nil {
		a.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		a.log.Debug("write response", zap.Error(err))
	}
}

// --- Middleware ---

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (a *app) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		a.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// withUser rejects anonymous visitors before next runs.
func (a *app) withUser(next func(http.ResponseWriter, *http.Request, *sessions.Session, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := a.session(r)
		user, err := a.currentUser(sess)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		if user == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r, sess, user)
	}
}
