package store

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the ISO-8601 form posts are stamped with. Lexicographic
// order on it equals chronological order for a single time zone.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Post is one blog entry, stored as <id>.json.
type Post struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Labels    []string `json:"labels"`
	Author    string   `json:"author"`
	Timestamp string   `json:"timestamp"`
	Version   string   `json:"version,omitempty"`
}

// Posts is a directory of post files. Deleting a post also deletes its image
// from the attached upload store.
type Posts struct {
	dir     string
	uploads *Uploads
	now     func() time.Time
}

func NewPosts(dir string, uploads *Uploads) *Posts {
	return &Posts{dir: dir, uploads: uploads, now: time.Now}
}

// WithClock replaces the wall clock used for ids and timestamps.
func (p *Posts) WithClock(now func() time.Time) *Posts {
	p.now = now
	return p
}

func (p *Posts) path(id string) string {
	return filepath.Join(p.dir, id+".json")
}

// GenerateID derives an id from the current time in whole seconds. Two posts
// created within the same second get the same id and the later save wins.
func (p *Posts) GenerateID() string {
	return strconv.FormatInt(p.now().Unix(), 10)
}

// Timestamp returns the creation stamp for a post made now.
func (p *Posts) Timestamp() string {
	return p.now().Format(TimestampLayout)
}

// NewVersion returns a fresh version token for a post about to be saved.
func NewVersion() string {
	return uuid.NewString()
}

// ListAll reads every *.json file in the directory, newest first. A file that
// does not decode as a post, or whose id is not a valid post id, fails the
// whole listing.
func (p *Posts) ListAll() ([]Post, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]Post, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		var post Post
		if _, err := readJSON(filepath.Join(p.dir, e.Name()), &post); err != nil {
			return nil, err
		}
		if post.Timestamp == "" || checkID(post.ID) != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedPost, e.Name())
		}
		posts = append(posts, post)
	}

	slices.SortStableFunc(posts, func(a, b Post) int {
		return strings.Compare(b.Timestamp, a.Timestamp)
	})
	return posts, nil
}

func (p *Posts) Get(id string) (Post, error) {
	if err := checkID(id); err != nil {
		return Post{}, err
	}
	var post Post
	found, err := readJSON(p.path(id), &post)
	if err != nil {
		return Post{}, err
	}
	if !found {
		return Post{}, fmt.Errorf("%w: %s", ErrPostNotFound, id)
	}
	return post, nil
}

// Save creates or overwrites the post file. The caller supplies every field.
func (p *Posts) Save(post Post) error {
	if err := checkID(post.ID); err != nil {
		return err
	}
	return writeJSON(p.path(post.ID), post)
}

// Update overwrites title, content and labels of an existing post provided its
// stored version still equals expectedVersion. Author and timestamp are kept
// from the stored copy. The saved post is returned with its new version.
func (p *Posts) Update(post Post, expectedVersion string) (Post, error) {
	current, err := p.Get(post.ID)
	if err != nil {
		return Post{}, err
	}
	if current.Version != expectedVersion {
		return Post{}, fmt.Errorf("%w: %s", ErrVersionConflict, post.ID)
	}

	current.Title = post.Title
	current.Content = post.Content
	current.Labels = post.Labels
	current.Version = NewVersion()
	if err := p.Save(current); err != nil {
		return Post{}, err
	}
	return current, nil
}

// Delete removes the post file and its image. Either being absent is fine.
func (p *Posts) Delete(id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := removeIfExists(p.path(id)); err != nil {
		return err
	}
	if p.uploads != nil {
		return p.uploads.Delete(id)
	}
	return nil
}
