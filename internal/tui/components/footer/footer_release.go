//go:build release

package footer

import "github.com/garrettladley/pulse/internal/version"

func buildLabel() string {
	return "pulse " + version.Get()
}
