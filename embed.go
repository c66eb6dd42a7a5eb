package inkpost

import "embed"

// EmbeddedAssets contains client scripts shipped with the framework:
// likes.js, views.js
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
