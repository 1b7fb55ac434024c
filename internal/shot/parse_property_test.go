package shot_test

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"versionup/internal/shot"
)

// Property: Parse(WithVersion(n)) keeps the shot key and yields version n.
func TestShotKeyRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("re-substituting a version preserves the shot key", prop.ForAll(
		func(base string, version, next int, ext string) bool {
			path := fmt.Sprintf("/renders/%s/%s_v%03d.%s", base, base, version, ext)
			ref, err := shot.Parse(path)
			if err != nil {
				return false
			}
			if ref.ShotKey != base || ref.Version != version {
				return false
			}
			again, err := shot.Parse("/renders/" + ref.WithVersion(next))
			if err != nil {
				return false
			}
			return again.ShotKey == ref.ShotKey && again.Version == next
		},
		gen.Identifier(),
		gen.IntRange(0, 9999),
		gen.IntRange(0, 9999),
		gen.OneConstOf("mov", "mp4", "exr", "dpx", "mxf"),
	))

	properties.TestingRun(t)
}
