package spacetraveling

import "embed"

// EmbeddedAssets contains the static assets shipped with the site:
// app.js (load more, comments) and style.css.
//
//go:embed assets/*
var EmbeddedAssets embed.FS
