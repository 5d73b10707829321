package configs

import _ "embed"

// Schema validates deployment files.
//
//go:embed schema.cue
var Schema string
