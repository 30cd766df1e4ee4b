package assets

import (
	_ "embed"
	"strings"
)

//go:embed banner.txt
var banner string

// BannerString is printed once at start-up.
var BannerString = strings.TrimRight(banner, "\n") + "\n  a REST API from a single JSON file\n"
