// Package view turns a store snapshot and the visitor's filter state into the
// page description the template draws. Nothing here touches the filesystem.
package view

import (
	"net/url"

	"minicms/internal/feed"
	"minicms/internal/store"
)

// Snapshot is everything a render reads from the stores.
type Snapshot struct {
	Username string
	Posts    []store.Post
	HasImage func(id string) bool
}

// LabelLink is a clickable label, in the sidebar or under a post.
type LabelLink struct {
	Name   string
	Href   string
	Active bool
}

type PostView struct {
	ID          string
	Title       string
	Author      string
	Timestamp   string
	Version     string
	Content     string
	ContentHTML string
	Labels      []LabelLink
	LabelsText  string
	HasImage    bool
	ImageURL    string
	Editable    bool
}

// Page describes one full render.
type Page struct {
	Authenticated bool
	Username      string
	SearchText    string
	Labels        []LabelLink
	BannerLabel   string
	BannerSearch  string
	ShowClear     bool
	Posts         []PostView
}

func labelHref(label string) string {
	return "/?label=" + url.QueryEscape(label)
}

func labelLinks(labels []string, selected string) []LabelLink {
	links := make([]LabelLink, 0, len(labels))
	for _, l := range labels {
		links = append(links, LabelLink{Name: l, Href: labelHref(l), Active: l == selected})
	}
	return links
}

// Render builds the page for state over snap. An anonymous visitor gets an
// empty page with only the login form; no post data leaks. The returned state
// is the one the page reflects.
func Render(state State, snap Snapshot) (Page, State) {
	page := Page{
		Authenticated: snap.Username != "",
		Username:      snap.Username,
	}
	if !page.Authenticated {
		return page, state
	}

	page.SearchText = state.SearchText
	page.Labels = labelLinks(feed.AllLabels(snap.Posts), state.SelectedLabel)
	page.ShowClear = state.Filtering()

	posts := snap.Posts
	switch {
	case state.SelectedLabel != "":
		posts = feed.FilterByLabel(posts, state.SelectedLabel)
		page.BannerLabel = state.SelectedLabel
	case state.SearchText != "":
		posts = feed.FilterBySearch(posts, state.SearchText)
		page.BannerSearch = state.SearchText
	}

	page.Posts = make([]PostView, 0, len(posts))
	for _, p := range posts {
		pv := PostView{
			ID:          p.ID,
			Title:       p.Title,
			Author:      p.Author,
			Timestamp:   p.Timestamp,
			Version:     p.Version,
			Content:     p.Content,
			ContentHTML: Markdown(p.Content),
			Labels:      labelLinks(p.Labels, state.SelectedLabel),
			LabelsText:  feed.JoinLabels(p.Labels),
			Editable:    p.Author == snap.Username,
		}
		if snap.HasImage != nil && snap.HasImage(p.ID) {
			pv.HasImage = true
			pv.ImageURL = "/uploads/" + p.ID + ".png"
		}
		page.Posts = append(page.Posts, pv)
	}
	return page, state
}
