package epub

import (
	"github.com/Laisky/errors/v2"
	"github.com/hashicorp/go-version"
)

// SupportedMdbookVersions is the range of mdBook releases whose
// RenderContext this backend understands.
const SupportedMdbookVersions = ">= 0.4.0, < 0.6.0"

var supported = version.MustConstraints(version.NewConstraint(SupportedMdbookVersions))

// CheckVersion verifies that got, the version reported by mdBook, is in
// [SupportedMdbookVersions].
func CheckVersion(got string) error {
	v, err := version.NewSemver(got)
	if err != nil {
		return errors.Wrapf(err, "epub: parse mdbook version %q", got)
	}
	// Pre-releases of a supported version (0.5.0-alpha.1) are accepted.
	if !supported.Check(v.Core()) {
		return &IncompatibleVersionError{Expected: SupportedMdbookVersions, Got: got}
	}
	return nil
}
