// Package web carries the default console page served when no page path
// is configured.
package web

import _ "embed"

//go:embed console.html
var ConsolePage string
