package views

import (
	"encoding/json"
	"html/template"

	"github.com/pejamp/spacetraveling/blog"
	"github.com/pejamp/spacetraveling/prismic"
)

// WebsiteJSONLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJSONLD(cfg SiteConfig) template.JS {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      blog.BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	return marshalJS(data)
}

// BlogPostingJSONLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJSONLD(cfg SiteConfig, post blog.PostDetail) template.JS {
	postURL := blog.BuildURL(cfg.URL, "post", post.UID)
	data := map[string]any{
		"@context":  "https://schema.org",
		"@type":     "BlogPosting",
		"headline":  post.Title,
		"url":       postURL,
		"publisher": map[string]string{"@type": "Organization", "name": cfg.Name},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if post.Subtitle != "" {
		data["description"] = post.Subtitle
	}
	if post.FirstPublicationDate != nil {
		data["datePublished"] = post.FirstPublicationDate.Format(prismic.TimeLayout)
	}
	if post.Edited() {
		data["dateModified"] = post.LastPublicationDate.Format(prismic.TimeLayout)
	}
	if post.Author != "" {
		data["author"] = map[string]string{"@type": "Person", "name": post.Author}
	}
	if post.BannerURL != "" {
		data["image"] = post.BannerURL
	}
	return marshalJS(data)
}

// marshalJS encodes v for a JSON-LD script element. encoding/json escapes
// <, > and & so the output cannot close the element.
func marshalJS(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return template.JS(b)
}
