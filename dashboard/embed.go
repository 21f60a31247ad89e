// Package dashboard provides the embedded landing page assets for Launchpad.
//
// This package uses Go's embed directive to include the page HTML, CSS,
// and JavaScript at compile time. This enables single-binary deployment
// without external asset files.
//
// The embedded assets are served by the server package at the root path ("/").
package dashboard

import "embed"

// Assets is an embedded filesystem containing the landing page.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Landing page with inline CSS and JavaScript
//
// Assets is used by the server package to serve the page. The embed
// directive includes all files in the assets directory at compile time.
//
//go:embed assets/*
var Assets embed.FS
