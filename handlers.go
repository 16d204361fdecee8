package main

import (
	"errors"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"minicms/internal/feed"
	"minicms/internal/store"
	"minicms/internal/view"
)

const (
	msgInvalidLogin    = "Invalid username or password"
	msgMissingFields   = "Title and content are required"
	msgBadImage        = "Images must be PNG or JPEG files"
	msgUploadTooLarge  = "The upload is too large"
	msgVersionConflict = "This post was changed by someone else. Reload and try again."
	msgPublished       = "Post published!"
	msgUpdated         = "Post updated!"
	msgDeleted         = "Post deleted!"
)

var errBadImage = errors.New("unsupported image type")

// GET /: the whole UI. Login form for anonymous visitors, otherwise the
// sidebar, creation form and filtered feed. ?label=x selects a label filter
// and redirects so the URL no longer carries it. An empty ?label= is ignored.
func (a *app) indexHandler(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)

	if label := r.URL.Query().Get("label"); label != "" {
		putViewState(sess, viewState(sess).SelectLabel(label))
		a.redirect(w, r, sess, "/")
		return
	}

	user, err := a.currentUser(sess)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if user == "" {
		a.renderPage(w, r, sess, view.Page{}, loginForm{}, http.StatusOK)
		return
	}

	posts, err := a.posts.ListAll()
	if err != nil {
		a.fail(w, r, err)
		return
	}

	page, st := view.Render(viewState(sess), view.Snapshot{
		Username: user,
		Posts:    posts,
		HasImage: a.uploads.Exists,
	})
	putViewState(sess, st)
	a.renderPage(w, r, sess, page, loginForm{}, http.StatusOK)
}

// GET + POST /login
func (a *app) loginHandler(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	if r.Method != http.MethodPost {
		a.redirect(w, r, sess, "/")
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	ok, err := a.users.Authenticate(username, password)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if !ok {
		a.metrics.logins.WithLabelValues("failure").Inc()
		a.log.Info("login failed", zap.String("username", username))
		a.renderPage(w, r, sess, view.Page{}, loginForm{Username: username, Error: msgInvalidLogin}, http.StatusOK)
		return
	}

	if err := a.sessions.Save(username); err != nil {
		a.fail(w, r, err)
		return
	}
	sess.Values[keyUsername] = username
	a.metrics.logins.WithLabelValues("success").Inc()
	a.log.Info("user logged in", zap.String("username", username))
	a.redirect(w, r, sess, "/")
}

// GET + POST /logout
func (a *app) logoutHandler(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	if err := a.sessions.Clear(); err != nil {
		a.fail(w, r, err)
		return
	}
	delete(sess.Values, keyUsername)
	putViewState(sess, viewState(sess).ClearFilters())
	a.redirect(w, r, sess, "/")
}

// POST /search
func (a *app) searchHandler(w http.ResponseWriter, r *http.Request, sess *sessions.Session, _ string) {
	putViewState(sess, viewState(sess).Search(r.FormValue("q")))
	a.redirect(w, r, sess, "/")
}

// POST /filter/label
func (a *app) labelFilterHandler(w http.ResponseWriter, r *http.Request, sess *sessions.Session, _ string) {
	putViewState(sess, viewState(sess).SelectLabel(r.FormValue("label")))
	a.redirect(w, r, sess, "/")
}

// POST /filter/clear
func (a *app) clearFiltersHandler(w http.ResponseWriter, r *http.Request, sess *sessions.Session, _ string) {
	putViewState(sess, viewState(sess).ClearFilters())
	a.redirect(w, r, sess, "/")
}

// parsePostForm reads a (possibly multipart) post form and the optional image.
// A nil file means no image was submitted.
func (a *app) parsePostForm(w http.ResponseWriter, r *http.Request) (multipart.File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, a.cfg.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(a.cfg.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !store.IsAllowedImage(header.Filename) {
		file.Close()
		return nil, errBadImage
	}
	return file, nil
}

func formErrorMessage(err error) string {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return msgUploadTooLarge
	}
	if errors.Is(err, errBadImage) {
		return msgBadImage
	}
	return err.Error()
}

func (a *app) saveImage(id string, file io.ReadCloser) error {
	defer file.Close()
	return a.uploads.Save(id, file)
}

// POST /posts
func (a *app) createPostHandler(w http.ResponseWriter, r *http.Request, sess *sessions.Session, user string) {
	image, err := a.parsePostForm(w, r)
	if err != nil {
		addFlash(sess, flashError, formErrorMessage(err))
		a.redirect(w, r, sess, "/")
		return
	}

	title := r.FormValue("title")
	content := r.FormValue("content")
	if title == "" || content == "" {
		if image != nil {
			image.Close()
		}
		addFlash(sess, flashError, msgMissingFields)
		a.redirect(w, r, sess, "/")
		return
	}

	post := store.Post{
		ID:        a.posts.GenerateID(),
		Title:     title,
		Content:   content,
		Labels:    feed.ParseLabels(r.FormValue("labels")),
		Author:    user,
		Timestamp: a.posts.Timestamp(),
		Version:   store.NewVersion(),
	}
	if err := a.posts.Save(post); err != nil {
		a.fail(w, r, err)
		return
	}
	if image != nil {
		if err := a.saveImage(post.ID, image); err != nil {
			a.fail(w, r, err)
			return
		}
	}

	a.metrics.posts.WithLabelValues("created").Inc()
	a.log.Info("post created", zap.String("id", post.ID), zap.String("author", user))
	addFlash(sess, flashSuccess, msgPublished)
	a.redirect(w, r, sess, "/")
}

// ownPost loads the post named in the URL and checks user wrote it. It writes
// the error response itself and reports false when the caller must stop.
func (a *app) ownPost(w http.ResponseWriter, r *http.Request, user string) (store.Post, bool) {
	post, err := a.posts.Get(mux.Vars(r)["id"])
	switch {
	case errors.Is(err, store.ErrPostNotFound), errors.Is(err, store.ErrInvalidID):
		http.NotFound(w, r)
		return store.Post{}, false
	case err != nil:
		a.fail(w, r, err)
		return store.Post{}, false
	}
	if post.Author != user {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return store.Post{}, false
	}
	return post, true
}

// POST /posts/{id}/edit
func (a *app) editPostHandler(w http.ResponseWriter, r *http.Request, sess *sessions.Session, user string) {
	post, ok := a.ownPost(w, r, user)
	if !ok {
		return
	}

	image, err := a.parsePostForm(w, r)
	if err != nil {
		addFlash(sess, flashError, formErrorMessage(err))
		a.redirect(w, r, sess, "/")
		return
	}

	edit := store.Post{
		ID:      post.ID,
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Labels:  feed.ParseLabels(r.FormValue("labels")),
	}
	if _, err := a.posts.Update(edit, r.FormValue("version")); err != nil {
		if image != nil {
			image.Close()
		}
		if errors.Is(err, store.ErrVersionConflict) {
			addFlash(sess, flashError, msgVersionConflict)
			a.redirect(w, r, sess, "/")
			return
		}
		a.fail(w, r, err)
		return
	}
	if image != nil {
		if err := a.saveImage(post.ID, image); err != nil {
			a.fail(w, r, err)
			return
		}
	}

	a.metrics.posts.WithLabelValues("updated").Inc()
	a.log.Info("post updated", zap.String("id", post.ID))
	addFlash(sess, flashSuccess, msgUpdated)
	a.redirect(w, r, sess, "/")
}

// POST /posts/{id}/delete
func (a *app) deletePostHandler(w http.ResponseWriter, r *http.Request, sess *sessions.Session, user string) {
	post, ok := a.ownPost(w, r, user)
	if !ok {
		return
	}
	if err := a.posts.Delete(post.ID); err != nil {
		a.fail(w, r, err)
		return
	}

	a.metrics.posts.WithLabelValues("deleted").Inc()
	a.log.Info("post deleted", zap.String("id", post.ID))
	addFlash(sess, flashSuccess, msgDeleted)
	a.redirect(w, r, sess, "/")
}

// GET /uploads/{id}.png
func (a *app) uploadHandler(w http.ResponseWriter, r *http.Request, _ *sessions.Session, _ string) {
	f, err := a.uploads.Open(mux.Vars(r)["id"])
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, store.ErrInvalidID) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		a.fail(w, r, err)
		return
	}

	// Stored as .png whatever the source format, so sniff the real type.
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		a.fail(w, r, err)
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(head[:n]))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
